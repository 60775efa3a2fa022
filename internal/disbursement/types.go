// Package disbursement implements the external, CloudEvents-carried
// payment flow: the structured-mode envelope codec, the envelope attribute
// validator, and the consumer that folds them together.
package disbursement

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED"
	StatusPending   Status = "PENDING"
)

const PaymentMethodBankTransfer = "BANK_TRANSFER"

type BankAccountDetails struct {
	AccountNumber string `json:"accountNumber"`
	SortCode      string `json:"sortCode"`
	IBAN          string `json:"iban"`
}

type Recipient struct {
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	BankDetails BankAccountDetails `json:"bankDetails"`
}

type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

type Request struct {
	DisbursementID string            `json:"disbursementId"`
	Recipient      Recipient         `json:"recipient"`
	Amount         Amount            `json:"amount"`
	PaymentMethod  string            `json:"paymentMethod"`
	RequestedAt    time.Time         `json:"requestedAt"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type Response struct {
	DisbursementID string `json:"disbursementId"`
	Status         Status `json:"status"`
	TransactionID  string `json:"transactionId,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
}
