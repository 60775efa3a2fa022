package application

import (
	"context"

	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

// Forwarder writes a validated request to the execution-request topic,
// keyed by paymentId.
type Forwarder interface {
	Forward(ctx context.Context, req domain.PaymentRequest) error
}

// ResponseEmitter publishes a response record. It never reports failure to
// the caller: a failed publish is logged and escalated out-of-band, so the
// caller can always proceed to acknowledge the originating record.
type ResponseEmitter interface {
	Emit(ctx context.Context, topic, paymentID string, resp domain.PaymentResponse)
}

// OpsNotifier is the last-resort escalation sink. Implementations must be
// side-effect-safe, non-throwing and bounded.
type OpsNotifier interface {
	NotifyOps(ctx context.Context, paymentID, errorMessage string, cause error)
}
