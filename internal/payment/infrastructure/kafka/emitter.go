package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
	"github.com/ruyalabs/payment-pipeline/internal/payment/application"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

// ResponseEmitter publishes response records reliably: a failed publish is
// logged with full context and escalated to operations instead of being
// returned to the caller. Retry is the broker client's job, not this
// layer's; the contract here is only that no failure is silent.
type ResponseEmitter struct {
	log      *slog.Logger
	producer Producer
	ops      application.OpsNotifier
	timeout  time.Duration
}

func NewResponseEmitter(log *slog.Logger, producer Producer, ops application.OpsNotifier, timeout time.Duration) *ResponseEmitter {
	return &ResponseEmitter{log: log, producer: producer, ops: ops, timeout: timeout}
}

func (e *ResponseEmitter) Emit(ctx context.Context, topic, paymentID string, resp domain.PaymentResponse) {
	value, err := json.Marshal(resp)
	if err != nil {
		e.escalate(ctx, topic, paymentID, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EmitDuration)
	err = e.producer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   messageKey(paymentID),
		Value: value,
	})
	timer.ObserveDuration()

	if err != nil {
		e.escalate(ctx, topic, paymentID, err)
		return
	}
	e.log.Info("payment response sent", "payment_id", paymentID, "topic", topic)
}

func (e *ResponseEmitter) escalate(ctx context.Context, topic, paymentID string, cause error) {
	e.log.Error("failed to send payment response", "payment_id", paymentID, "topic", topic, "err", cause)
	msg := fmt.Sprintf("failed to send payment response to topic %q: %v", topic, cause)
	e.ops.NotifyOps(ctx, paymentID, msg, cause)
}

func messageKey(paymentID string) []byte {
	if paymentID == "" {
		return nil
	}
	return []byte(paymentID)
}
