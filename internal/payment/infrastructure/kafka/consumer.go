package kafka

import (
	"context"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
	"github.com/ruyalabs/payment-pipeline/internal/payment/application"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

// Headers attached by upstream bus clients when they hit a deserialization
// failure before the record reached this code. Logged verbatim.
const deserializerHeaderPrefix = "spring.deserializer."

// recordReader is the slice of kafka.Reader the consumers drive.
type recordReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RequestConsumer owns one reader in the request consumer group. Each
// instance processes its partitions one record at a time; run several
// instances in the same group for partition parallelism. Offsets are
// committed manually, only after the state machine reached a terminal
// action, which is what makes delivery at-least-once.
type RequestConsumer struct {
	log      *slog.Logger
	reader   recordReader
	ingestor *application.Ingestor
	tracer   trace.Tracer
}

func NewRequestConsumer(log *slog.Logger, brokers []string, topic, group string, ingestor *application.Ingestor) *RequestConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: kafka.FirstOffset,
	})
	return &RequestConsumer{
		log:      log,
		reader:   r,
		ingestor: ingestor,
		tracer:   otel.Tracer("payment-request-consumer"),
	}
}

func (c *RequestConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		// Shutdown stops the intake above; the record already in flight
		// still runs through its terminal action and gets acknowledged.
		recordCtx := context.WithoutCancel(ctx)
		c.handle(recordCtx, msg)

		if err := c.reader.CommitMessages(recordCtx, msg); err != nil {
			c.log.Error("offset commit failed", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
	}
}

func (c *RequestConsumer) handle(ctx context.Context, msg kafka.Message) {
	ctx = tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	ctx, span := c.tracer.Start(ctx, "IngestPaymentRequest")
	defer span.End()

	c.log.Info("received payment request", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	metrics.RecordsConsumed.WithLabelValues(msg.Topic).Inc()
	logDeserializerHeaders(c.log, msg.Headers)

	c.ingestor.Handle(ctx, msg.Value)
}

// ExecutionResponseConsumer feeds the relay from the execution-response
// topic. Same acknowledgement discipline as the request consumer.
type ExecutionResponseConsumer struct {
	log    *slog.Logger
	reader recordReader
	relay  *application.Relay
	tracer trace.Tracer
}

func NewExecutionResponseConsumer(log *slog.Logger, brokers []string, topic, group string, relay *application.Relay) *ExecutionResponseConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: kafka.FirstOffset,
	})
	return &ExecutionResponseConsumer{
		log:    log,
		reader: r,
		relay:  relay,
		tracer: otel.Tracer("payment-execution-response-consumer"),
	}
}

func (c *ExecutionResponseConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		recordCtx := context.WithoutCancel(ctx)
		c.handle(recordCtx, msg)

		if err := c.reader.CommitMessages(recordCtx, msg); err != nil {
			c.log.Error("offset commit failed", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
	}
}

func (c *ExecutionResponseConsumer) handle(ctx context.Context, msg kafka.Message) {
	ctx = tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	ctx, span := c.tracer.Start(ctx, "RelayExecutionResponse")
	defer span.End()

	c.log.Info("received payment execution response", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	metrics.RecordsConsumed.WithLabelValues(msg.Topic).Inc()
	logDeserializerHeaders(c.log, msg.Headers)

	c.relay.Handle(ctx, msg.Value)
}

func logDeserializerHeaders(log *slog.Logger, headers []kafka.Header) {
	for _, h := range headers {
		if strings.HasPrefix(h.Key, deserializerHeaderPrefix) {
			log.Error("upstream deserializer error header", "key", h.Key, "value", string(h.Value))
		}
	}
}
