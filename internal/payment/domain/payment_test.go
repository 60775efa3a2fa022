package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestErrorResponseSerialization(t *testing.T) {
	resp := NewErrorResponse("PAY123", CodeFaultyRequest, errors.New("faulty flag set"))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(fields["paymentId"]) != `"PAY123"` {
		t.Errorf("paymentId = %s, want \"PAY123\"", fields["paymentId"])
	}
	if _, ok := fields["status"]; ok {
		t.Error("refusal carries a status field")
	}
	if _, ok := fields["errorData"]; !ok {
		t.Error("refusal is missing errorData")
	}
}

func TestResponseOmitsEmptyPaymentID(t *testing.T) {
	resp := NewErrorResponse("", CodeStructural, errors.New("validation failed: paymentId: must not be null"))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, ok := fields["paymentId"]; ok {
		t.Errorf("paymentId = %s, want the field absent", got)
	}
}
