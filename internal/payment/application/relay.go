package application

import (
	"context"
	"log/slog"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
	"github.com/ruyalabs/payment-pipeline/internal/payment/codec"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

// Relay re-publishes execution responses onto the caller-facing response
// topic. Status logging is observational only; it never alters the
// publish decision, and there is no deduplication.
type Relay struct {
	log           *slog.Logger
	emitter       ResponseEmitter
	responseTopic string
}

func NewRelay(log *slog.Logger, emitter ResponseEmitter, responseTopic string) *Relay {
	return &Relay{log: log, emitter: emitter, responseTopic: responseTopic}
}

func (r *Relay) Handle(ctx context.Context, raw []byte) {
	resp, err := codec.DecodeResponse(raw)
	if err != nil {
		r.log.Error("execution response decode failed", "err", err)
		return
	}

	r.logStatus(resp)

	r.emitter.Emit(ctx, r.responseTopic, resp.PaymentID, resp)
	metrics.ResponsesRelayed.Inc()
}

func (r *Relay) logStatus(resp domain.PaymentResponse) {
	switch resp.Status {
	case domain.StatusProcessed:
		r.log.Info("payment processed", "payment_id", resp.PaymentID)
	case domain.StatusFailed:
		reason := ""
		if resp.ErrorData != nil {
			reason = resp.ErrorData.ErrorMessage
		}
		r.log.Error("payment failed", "payment_id", resp.PaymentID, "reason", reason)
	case domain.StatusPending:
		r.log.Info("payment pending", "payment_id", resp.PaymentID)
	case "":
		// Error responses synthesized upstream carry no status.
	default:
		r.log.Warn("unknown payment status", "payment_id", resp.PaymentID, "status", string(resp.Status))
	}
}
