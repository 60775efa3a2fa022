package domain

import "errors"

// ErrorCode is the taxonomy code carried in every emitted PaymentResponse.
// The string values are a wire contract shared with existing consumers.
type ErrorCode string

const (
	CodeDeserialization  ErrorCode = "DESERIALIZATION_ERROR"
	CodeStructural       ErrorCode = "JAKARTA_VALIDATION_ERROR"
	CodeFaultyRequest    ErrorCode = "FAULTY_REQUEST_ERROR"
	CodeInvalidCurrency  ErrorCode = "INVALID_CURRENCY_ERROR"
	CodeInvalidAmount    ErrorCode = "INVALID_AMOUNT_ERROR"
	CodeMissingPaymentID ErrorCode = "MISSING_PAYMENT_ID_ERROR"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeInternal         ErrorCode = "INTERNAL_PROCESSING_ERROR"
)

// ValidationError is the single tagged failure produced by the validator.
// The tag drives the errorCode mapping; there is no error subclass tree.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CodeOf maps a handler failure to its taxonomy code. Anything that is not
// a tagged validation failure is an internal processing error.
func CodeOf(err error) ErrorCode {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return CodeInternal
}
