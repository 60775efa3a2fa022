package disbursement

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/segmentio/kafka-go"
)

const (
	// EventType is the only envelope type this flow accepts.
	EventType = "com.ruyalabs.payment.disbursement.request"

	// StructuredContentType must appear in the record's content-type
	// header for structured-mode acceptance. Binary mode is not accepted.
	StructuredContentType = "application/cloudevents+json"

	dataContentType = "application/json"
	specVersion     = "1.0"
)

var allowedSources = map[string]struct{}{
	"payment-service":   {},
	"payment-2-service": {},
}

// EnvelopeError names the violated envelope attribute; rejected records
// are dropped with a log line carrying this name.
type EnvelopeError struct {
	Attribute string
	Detail    string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Attribute, e.Detail)
}

// IsStructuredMode reports whether the record's content-type header marks
// the CloudEvent as structured-mode. The match is case-insensitive and
// tolerates charset suffixes.
func IsStructuredMode(headers []kafka.Header) bool {
	for i := len(headers) - 1; i >= 0; i-- {
		if strings.EqualFold(headers[i].Key, "content-type") {
			return strings.Contains(strings.ToLower(string(headers[i].Value)), StructuredContentType)
		}
	}
	return false
}

// DecodeEnvelope parses a structured-mode CloudEvent out of a record value.
func DecodeEnvelope(value []byte) (*event.Event, error) {
	e := event.New()
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ValidateEnvelope checks the envelope attributes against the disbursement
// schema. Any violation makes the record structurally invalid; it must be
// dropped, never propagated.
func ValidateEnvelope(e *event.Event) error {
	if e.SpecVersion() != specVersion {
		return &EnvelopeError{"specversion", fmt.Sprintf("expected %q, got %q", specVersion, e.SpecVersion())}
	}
	if e.Type() != EventType {
		return &EnvelopeError{"type", fmt.Sprintf("expected %q, got %q", EventType, e.Type())}
	}
	if _, ok := allowedSources[e.Source()]; !ok {
		return &EnvelopeError{"source", fmt.Sprintf("expected payment-service or payment-2-service, got %q", e.Source())}
	}
	if strings.TrimSpace(e.ID()) == "" {
		return &EnvelopeError{"id", "id is required and cannot be empty"}
	}
	if ct := e.DataContentType(); ct != "" && ct != dataContentType {
		return &EnvelopeError{"datacontenttype", fmt.Sprintf("expected %q, got %q", dataContentType, ct)}
	}
	if e.Data() == nil {
		return &EnvelopeError{"data", "data is required"}
	}
	return nil
}
