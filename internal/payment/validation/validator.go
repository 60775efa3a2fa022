// Package validation applies the structural and business rules for inbound
// payment requests. Structural rules run first and are collected into a
// single failure; business rules run only on structurally sound requests.
package validation

import (
	"regexp"
	"strings"

	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var supportedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"CHF": {},
}

// structuralRule reports an empty string when the field is acceptable.
// The rule order is part of the contract: violations are reported in this
// order and shadow any business rule for the same record.
type structuralRule struct {
	field string
	check func(domain.PaymentRequest) string
}

var structuralRules = []structuralRule{
	{"paymentId", func(r domain.PaymentRequest) string {
		if r.PaymentID == "" {
			return "must not be null"
		}
		return ""
	}},
	{"amount", func(r domain.PaymentRequest) string {
		if !r.Amount.Valid {
			return "must not be null"
		}
		return ""
	}},
	{"currency", func(r domain.PaymentRequest) string {
		if !currencyPattern.MatchString(r.Currency) {
			return `must match "^[A-Z]{3}$"`
		}
		return ""
	}},
}

// Validate returns nil or a single tagged *domain.ValidationError.
func Validate(req domain.PaymentRequest) error {
	var violations []string
	for _, rule := range structuralRules {
		if msg := rule.check(req); msg != "" {
			violations = append(violations, rule.field+": "+msg)
		}
	}
	if len(violations) > 0 {
		return &domain.ValidationError{
			Code:    domain.CodeStructural,
			Message: "validation failed: " + strings.Join(violations, ", "),
		}
	}

	if req.IsFaulty {
		return &domain.ValidationError{
			Code:    domain.CodeFaultyRequest,
			Message: "payment request is marked as faulty for testing purposes",
		}
	}
	if _, ok := supportedCurrencies[req.Currency]; !ok {
		return &domain.ValidationError{
			Code:    domain.CodeInvalidCurrency,
			Message: "unsupported currency: " + req.Currency,
		}
	}
	if !req.Amount.Decimal.IsPositive() {
		return &domain.ValidationError{
			Code:    domain.CodeInvalidAmount,
			Message: "invalid payment amount: " + req.Amount.Decimal.String(),
		}
	}
	return nil
}
