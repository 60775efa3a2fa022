package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go on the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentRequest is the typed body carried on the payment-request and
// payment-execution-request topics. It is created by deserialization and
// read-only afterwards.
type PaymentRequest struct {
	PaymentID string              `json:"paymentId"`
	IsFaulty  bool                `json:"isFaulty"`
	Amount    decimal.NullDecimal `json:"amount"`
	Currency  string              `json:"currency"`
}

// Status of an executed payment as reported on the execution-response topic.
type Status string

const (
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
	StatusPending   Status = "PENDING"
)

// PaymentResponse is the caller-facing record on the payment-response topic.
// ErrorData is set only on synthesized refusals. A refusal with no usable
// paymentId carries no paymentId field at all, never an empty string.
type PaymentResponse struct {
	PaymentID string     `json:"paymentId,omitempty"`
	Status    Status     `json:"status,omitempty"`
	ErrorData *ErrorData `json:"errorData,omitempty"`
}

type ErrorData struct {
	ErrorCode    ErrorCode `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
	ErrorDetails string    `json:"errorDetails"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// NewErrorResponse synthesizes the refusal record for a failed request.
func NewErrorResponse(paymentID string, code ErrorCode, cause error) PaymentResponse {
	return PaymentResponse{
		PaymentID: paymentID,
		ErrorData: &ErrorData{
			ErrorCode:    code,
			ErrorMessage: cause.Error(),
			ErrorDetails: fmt.Sprintf("error type: %T, detail: %v", cause, cause),
			OccurredAt:   time.Now().UTC(),
		},
	}
}
