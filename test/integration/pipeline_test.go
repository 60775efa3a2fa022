package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"

	"github.com/ruyalabs/payment-pipeline/internal/payment/application"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/kafka"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/ops"
)

// Full broker round trip: request in, forwarded record or error response
// out. Needs docker; enable with INTEGRATION=1.
func TestIngestSplitsValidAndInvalidRequests(t *testing.T) {
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run broker tests")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Fatalf("environment setup: %v", err)
	}
	defer env.Teardown(ctx)

	const (
		requestTopic   = "payment-request"
		executionTopic = "payment-execution-request"
		responseTopic  = "payment-response"
	)
	if err := kafka.EnsureTopics(ctx, env.Brokers, requestTopic, executionTopic, responseTopic); err != nil {
		t.Fatalf("EnsureTopics: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := kafka.NewWriter(env.Brokers)
	defer writer.Close()

	emitter := kafka.NewResponseEmitter(log, writer, ops.NewLogNotifier(log), 10*time.Second)
	forwarder := kafka.NewForwarder(log, writer, executionTopic)
	ingestor := application.NewIngestor(log, forwarder, emitter, responseTopic)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	consumer := kafka.NewRequestConsumer(log, env.Brokers, requestTopic, "payment-service", ingestor)
	go func() { _ = consumer.Run(consumerCtx) }()

	producer := &segkafka.Writer{Addr: segkafka.TCP(env.Brokers...), Balancer: &segkafka.Hash{}}
	defer producer.Close()

	valid := []byte(`{"paymentId":"PAY123","isFaulty":false,"amount":100.0,"currency":"USD"}`)
	faulty := []byte(`{"paymentId":"PAY456","isFaulty":true,"amount":100.0,"currency":"USD"}`)
	if err := producer.WriteMessages(ctx,
		segkafka.Message{Topic: requestTopic, Key: []byte("PAY123"), Value: valid},
		segkafka.Message{Topic: requestTopic, Key: []byte("PAY456"), Value: faulty},
	); err != nil {
		t.Fatalf("produce requests: %v", err)
	}

	forwarded := readOne(t, ctx, env.Brokers, executionTopic)
	if string(forwarded.Key) != "PAY123" {
		t.Errorf("forwarded key = %q, want PAY123", forwarded.Key)
	}

	errored := readOne(t, ctx, env.Brokers, responseTopic)
	if string(errored.Key) != "PAY456" {
		t.Errorf("error response key = %q, want PAY456", errored.Key)
	}
	var resp domain.PaymentResponse
	if err := json.Unmarshal(errored.Value, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ErrorData == nil || resp.ErrorData.ErrorCode != domain.CodeFaultyRequest {
		t.Errorf("errorData = %+v, want FAULTY_REQUEST_ERROR", resp.ErrorData)
	}
}

func readOne(t *testing.T, ctx context.Context, brokers []string, topic string) segkafka.Message {
	t.Helper()
	r := segkafka.NewReader(segkafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "test-" + topic,
		StartOffset: segkafka.FirstOffset,
	})
	defer r.Close()

	readCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	msg, err := r.ReadMessage(readCtx)
	if err != nil {
		t.Fatalf("read from %s: %v", topic, err)
	}
	return msg
}
