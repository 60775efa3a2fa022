package application

import (
	"context"
	"log/slog"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
	"github.com/ruyalabs/payment-pipeline/internal/payment/codec"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
	"github.com/ruyalabs/payment-pipeline/internal/payment/validation"
)

// Ingestor drives the per-record state machine for inbound payment
// requests: decode, validate, then forward or synthesize an error
// response. Handle always reaches a terminal action before returning, so
// the caller may acknowledge the record unconditionally afterwards.
type Ingestor struct {
	log           *slog.Logger
	forwarder     Forwarder
	emitter       ResponseEmitter
	responseTopic string
}

func NewIngestor(log *slog.Logger, forwarder Forwarder, emitter ResponseEmitter, responseTopic string) *Ingestor {
	return &Ingestor{
		log:           log,
		forwarder:     forwarder,
		emitter:       emitter,
		responseTopic: responseTopic,
	}
}

func (i *Ingestor) Handle(ctx context.Context, raw []byte) {
	req, err := codec.DecodeRequest(raw)
	if err != nil {
		paymentID := codec.ExtractPaymentID(raw)
		i.log.Error("payment request decode failed", "payment_id", paymentID, "err", err)
		i.emitError(ctx, paymentID, domain.CodeDeserialization, err)
		return
	}

	if err := validation.Validate(req); err != nil {
		i.log.Error("payment request rejected", "payment_id", req.PaymentID, "err", err)
		i.emitError(ctx, req.PaymentID, domain.CodeOf(err), err)
		return
	}

	if err := i.forwarder.Forward(ctx, req); err != nil {
		i.log.Error("payment request forward failed", "payment_id", req.PaymentID, "err", err)
		i.emitError(ctx, req.PaymentID, domain.CodeInternal, err)
		return
	}

	metrics.RequestsForwarded.Inc()
	i.log.Info("payment request forwarded to execution topic", "payment_id", req.PaymentID)
}

func (i *Ingestor) emitError(ctx context.Context, paymentID string, code domain.ErrorCode, cause error) {
	resp := domain.NewErrorResponse(paymentID, code, cause)
	i.emitter.Emit(ctx, i.responseTopic, paymentID, resp)
	metrics.ErrorResponses.WithLabelValues(string(code)).Inc()
}
