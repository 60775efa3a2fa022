// Package ops is the out-of-band escalation channel of last resort. The
// log-based sink satisfies the contract that a failed payment is recorded
// durably enough for an operator to find; a real deployment may swap in a
// mail or paging sink as long as it stays non-throwing and bounded.
package ops

import (
	"context"
	"log/slog"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOps(ctx context.Context, paymentID, errorMessage string, cause error) {
	n.log.Error("[CRITICAL_PAYMENT_ERROR] operations team notification",
		"payment_id", paymentID,
		"error", errorMessage,
		"cause", cause,
		"action_required", "manual investigation needed for payment processing failure",
	)
	n.log.Error("[SIMULATED_EMAIL_SENT] operations team notified", "payment_id", paymentID)
	metrics.Escalations.Inc()
}
