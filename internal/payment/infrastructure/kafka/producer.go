package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

// Producer is the shared write surface; *kafka.Writer satisfies it and is
// safe for concurrent use across all ingestor and relay tasks.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns the shared producer client. The Hash balancer keeps
// every record for one key on one partition, which is what preserves
// per-payment ordering downstream.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
}

// Forwarder writes decoded payment requests to the execution-request topic.
type Forwarder struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewForwarder(log *slog.Logger, producer Producer, topic string) *Forwarder {
	return &Forwarder{log: log, producer: producer, topic: topic}
}

func (f *Forwarder) Forward(ctx context.Context, req domain.PaymentRequest) error {
	value, err := json.Marshal(req)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic:   f.topic,
		Key:     []byte(req.PaymentID),
		Value:   value,
		Headers: tracing.InjectKafkaHeaders(ctx, nil),
	}
	return f.producer.WriteMessages(ctx, msg)
}
