package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"

	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

type fakeProducer struct {
	msgs []segkafka.Message
	err  error
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type opsCall struct {
	paymentID string
	message   string
	cause     error
}

type fakeOps struct {
	calls []opsCall
}

func (f *fakeOps) NotifyOps(_ context.Context, paymentID, errorMessage string, cause error) {
	f.calls = append(f.calls, opsCall{paymentID, errorMessage, cause})
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitPublishesResponse(t *testing.T) {
	prod := &fakeProducer{}
	ops := &fakeOps{}
	em := NewResponseEmitter(discard(), prod, ops, time.Second)

	resp := domain.NewErrorResponse("PAY123", domain.CodeFaultyRequest, errors.New("faulty"))
	em.Emit(context.Background(), "payment-response", "PAY123", resp)

	if len(prod.msgs) != 1 {
		t.Fatalf("produced %d messages, want 1", len(prod.msgs))
	}
	msg := prod.msgs[0]
	if msg.Topic != "payment-response" {
		t.Errorf("topic = %q, want payment-response", msg.Topic)
	}
	if string(msg.Key) != "PAY123" {
		t.Errorf("key = %q, want PAY123", msg.Key)
	}

	var decoded domain.PaymentResponse
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("emitted value is not valid JSON: %v", err)
	}
	if decoded.ErrorData == nil || decoded.ErrorData.ErrorCode != domain.CodeFaultyRequest {
		t.Errorf("emitted errorData = %+v, want FAULTY_REQUEST_ERROR", decoded.ErrorData)
	}
	if len(ops.calls) != 0 {
		t.Errorf("ops notified %d times on success, want 0", len(ops.calls))
	}
}

func TestEmitEscalatesOnPublishFailure(t *testing.T) {
	cause := errors.New("broker down")
	prod := &fakeProducer{err: cause}
	ops := &fakeOps{}
	em := NewResponseEmitter(discard(), prod, ops, time.Second)

	resp := domain.NewErrorResponse("PAY123", domain.CodeInternal, errors.New("boom"))
	em.Emit(context.Background(), "payment-response", "PAY123", resp)

	if len(ops.calls) != 1 {
		t.Fatalf("ops notified %d times, want exactly 1", len(ops.calls))
	}
	call := ops.calls[0]
	if call.paymentID != "PAY123" {
		t.Errorf("escalated paymentId = %q, want PAY123", call.paymentID)
	}
	if !errors.Is(call.cause, cause) {
		t.Errorf("escalated cause = %v, want %v", call.cause, cause)
	}
}

func TestEmitUsesNilKeyForUnknownlessID(t *testing.T) {
	prod := &fakeProducer{}
	em := NewResponseEmitter(discard(), prod, &fakeOps{}, time.Second)

	em.Emit(context.Background(), "payment-response", "", domain.PaymentResponse{})

	if len(prod.msgs) != 1 {
		t.Fatalf("produced %d messages, want 1", len(prod.msgs))
	}
	if prod.msgs[0].Key != nil {
		t.Errorf("key = %q, want nil for empty paymentId", prod.msgs[0].Key)
	}
}
