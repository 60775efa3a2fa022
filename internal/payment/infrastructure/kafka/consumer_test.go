package kafka

import (
	"context"
	"errors"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/ruyalabs/payment-pipeline/internal/payment/application"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
)

var errReaderDrained = errors.New("reader drained")

// scriptedReader serves one message, then fails the next fetch so Run
// returns. Commits are appended to the shared action log.
type scriptedReader struct {
	msg       segkafka.Message
	fetched   bool
	actions   *[]string
	committed []segkafka.Message
}

func (r *scriptedReader) FetchMessage(context.Context) (segkafka.Message, error) {
	if r.fetched {
		return segkafka.Message{}, errReaderDrained
	}
	r.fetched = true
	return r.msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...segkafka.Message) error {
	*r.actions = append(*r.actions, "commit")
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *scriptedReader) Close() error { return nil }

type loggedForwarder struct {
	actions *[]string
}

func (f *loggedForwarder) Forward(context.Context, domain.PaymentRequest) error {
	*f.actions = append(*f.actions, "forward")
	return nil
}

type loggedEmitter struct {
	actions *[]string
}

func (e *loggedEmitter) Emit(_ context.Context, _, _ string, _ domain.PaymentResponse) {
	*e.actions = append(*e.actions, "emit")
}

func TestRequestConsumerCommitsAfterForward(t *testing.T) {
	var actions []string
	rd := &scriptedReader{
		msg: segkafka.Message{
			Topic:     "payment-request",
			Partition: 1,
			Offset:    42,
			Key:       []byte("PAY123"),
			Value:     []byte(`{"paymentId":"PAY123","isFaulty":false,"amount":100.0,"currency":"USD"}`),
		},
		actions: &actions,
	}
	c := &RequestConsumer{
		log:      discard(),
		reader:   rd,
		ingestor: application.NewIngestor(discard(), &loggedForwarder{&actions}, &loggedEmitter{&actions}, "payment-response"),
		tracer:   otel.Tracer("test"),
	}

	if err := c.Run(context.Background()); !errors.Is(err, errReaderDrained) {
		t.Fatalf("Run returned %v, want reader error", err)
	}

	if len(actions) != 2 || actions[0] != "forward" || actions[1] != "commit" {
		t.Fatalf("actions = %v, want [forward commit]", actions)
	}
	if len(rd.committed) != 1 || rd.committed[0].Offset != 42 {
		t.Errorf("committed = %+v, want the fetched record at offset 42", rd.committed)
	}
}

func TestRequestConsumerCommitsAfterErrorResponse(t *testing.T) {
	var actions []string
	rd := &scriptedReader{
		msg: segkafka.Message{
			Topic: "payment-request",
			Value: []byte(`{"paymentId":"PAY456","isFaulty":true,"amount":100.0,"currency":"USD"}`),
		},
		actions: &actions,
	}
	c := &RequestConsumer{
		log:      discard(),
		reader:   rd,
		ingestor: application.NewIngestor(discard(), &loggedForwarder{&actions}, &loggedEmitter{&actions}, "payment-response"),
		tracer:   otel.Tracer("test"),
	}

	if err := c.Run(context.Background()); !errors.Is(err, errReaderDrained) {
		t.Fatalf("Run returned %v, want reader error", err)
	}

	if len(actions) != 2 || actions[0] != "emit" || actions[1] != "commit" {
		t.Fatalf("actions = %v, want [emit commit]", actions)
	}
}

func TestExecutionResponseConsumerCommitsAfterRelay(t *testing.T) {
	var actions []string
	rd := &scriptedReader{
		msg: segkafka.Message{
			Topic:  "payment-execution-response",
			Offset: 7,
			Value:  []byte(`{"paymentId":"PAY123","status":"PROCESSED"}`),
		},
		actions: &actions,
	}
	c := &ExecutionResponseConsumer{
		log:    discard(),
		reader: rd,
		relay:  application.NewRelay(discard(), &loggedEmitter{&actions}, "payment-response"),
		tracer: otel.Tracer("test"),
	}

	if err := c.Run(context.Background()); !errors.Is(err, errReaderDrained) {
		t.Fatalf("Run returned %v, want reader error", err)
	}

	if len(actions) != 2 || actions[0] != "emit" || actions[1] != "commit" {
		t.Fatalf("actions = %v, want [emit commit]", actions)
	}
	if len(rd.committed) != 1 || rd.committed[0].Offset != 7 {
		t.Errorf("committed = %+v, want the fetched record at offset 7", rd.committed)
	}
}
