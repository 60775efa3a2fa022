package disbursement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruyalabs/payment-pipeline/internal/metrics"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

const deserializerHeaderPrefix = "spring.deserializer."

// Consumer reads structured-mode CloudEvents from the disbursement
// response topic. Envelope violations are logged and dropped; the
// CloudEvents flow has no response-topic contract, so no synthetic
// response is synthesized. Every record is acknowledged either way.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{
		log:    log,
		reader: r,
		tracer: otel.Tracer("payment-disbursement-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
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

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ctx = tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	_, span := c.tracer.Start(ctx, "ConsumeDisbursementResponse")
	defer span.End()

	log := c.log.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	metrics.RecordsConsumed.WithLabelValues(msg.Topic).Inc()

	for _, h := range msg.Headers {
		if strings.HasPrefix(h.Key, deserializerHeaderPrefix) {
			log.Error("upstream deserializer error header", "key", h.Key, "value", string(h.Value))
		}
	}

	if len(bytes.TrimSpace(msg.Value)) == 0 {
		log.Error("received null or empty message")
		metrics.EnvelopeRejections.WithLabelValues("value").Inc()
		return
	}

	if !IsStructuredMode(msg.Headers) {
		log.Error("cloudevent not sent in structured mode", "required_content_type", StructuredContentType)
		metrics.EnvelopeRejections.WithLabelValues("content-type").Inc()
		return
	}

	e, err := DecodeEnvelope(msg.Value)
	if err != nil {
		log.Error("failed to decode cloudevent", "err", err)
		metrics.EnvelopeRejections.WithLabelValues("envelope").Inc()
		return
	}

	log.Info("received cloudevent", "id", e.ID(), "type", e.Type(), "source", e.Source())

	if err := ValidateEnvelope(e); err != nil {
		var envErr *EnvelopeError
		if errors.As(err, &envErr) {
			log.Error("cloudevent envelope rejected", "attribute", envErr.Attribute, "detail", envErr.Detail)
			metrics.EnvelopeRejections.WithLabelValues(envErr.Attribute).Inc()
		} else {
			log.Error("cloudevent envelope rejected", "err", err)
			metrics.EnvelopeRejections.WithLabelValues("envelope").Inc()
		}
		return
	}

	var resp Response
	if err := json.Unmarshal(e.Data(), &resp); err != nil {
		log.Error("failed to decode disbursement response data", "err", err)
		metrics.EnvelopeRejections.WithLabelValues("data").Inc()
		return
	}

	c.logStatus(log, resp)
}

func (c *Consumer) logStatus(log *slog.Logger, resp Response) {
	switch resp.Status {
	case StatusProcessed:
		log.Info("payment processed", "disbursement_id", resp.DisbursementID, "transaction_id", resp.TransactionID)
	case StatusFailed:
		log.Error("payment failed", "disbursement_id", resp.DisbursementID, "reason", resp.FailureReason)
	case StatusPending:
		log.Info("payment pending", "disbursement_id", resp.DisbursementID)
	default:
		log.Warn("unknown payment status", "disbursement_id", resp.DisbursementID, "status", string(resp.Status))
	}
}
