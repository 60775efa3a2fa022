// Package codec implements the typed-JSON framing for the internal payment
// topics, including best-effort paymentId recovery from undecodable payloads.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

// UnknownPaymentID is reported when no id can be recovered from a payload.
const UnknownPaymentID = "UNKNOWN"

// DecodeError carries the raw payload alongside the decoding diagnostic so
// the error path can still attempt id extraction and header logging.
type DecodeError struct {
	Raw   []byte
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("payment payload could not be parsed due to invalid format or structure: %v", e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

func DecodeRequest(b []byte) (domain.PaymentRequest, error) {
	var req domain.PaymentRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return domain.PaymentRequest{}, &DecodeError{Raw: b, cause: err}
	}
	return req, nil
}

func DecodeResponse(b []byte) (domain.PaymentResponse, error) {
	var resp domain.PaymentResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return domain.PaymentResponse{}, &DecodeError{Raw: b, cause: err}
	}
	return resp, nil
}

// ExtractPaymentID reads the top-level paymentId field out of b without
// requiring the rest of the document to parse. Truncated payloads still
// yield the id when it appears before the damage. Returns UnknownPaymentID
// when the field is absent, null, or unreachable.
func ExtractPaymentID(b []byte) string {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil || t != json.Delim('{') {
		return UnknownPaymentID
	}

	for {
		keyTok, err := dec.Token()
		if err != nil {
			return UnknownPaymentID
		}
		key, ok := keyTok.(string)
		if !ok {
			// Closing brace of the top-level object.
			return UnknownPaymentID
		}
		if key == "paymentId" {
			valTok, err := dec.Token()
			if err != nil {
				return UnknownPaymentID
			}
			switch v := valTok.(type) {
			case string:
				return v
			case json.Number:
				return v.String()
			default:
				return UnknownPaymentID
			}
		}
		if err := skipValue(dec); err != nil {
			return UnknownPaymentID
		}
	}
}

func skipValue(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := t.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := t.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
