package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruyalabs/payment-pipeline/internal/disbursement"
	"github.com/ruyalabs/payment-pipeline/internal/payment/domain"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/kafka"
	"github.com/ruyalabs/payment-pipeline/pkg/idempotency"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

// Handler exposes the trigger endpoints that feed the pipeline: a sample
// disbursement over CloudEvents and a typed payment request.
type Handler struct {
	log               *slog.Logger
	producer          kafka.Producer
	requestTopic      string
	disbursementTopic string
	idem              *idempotency.Store
	tracer            trace.Tracer
}

func NewHandler(log *slog.Logger, producer kafka.Producer, requestTopic, disbursementTopic string, idem *idempotency.Store) *Handler {
	return &Handler{
		log:               log,
		producer:          producer,
		requestTopic:      requestTopic,
		disbursementTopic: disbursementTopic,
		idem:              idem,
		tracer:            otel.Tracer("payment-trigger"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	if h.idem != nil {
		r.Use(idempotency.Middleware(h.log, h.idem))
	}
	r.Post("/api/payment/trigger", h.triggerDisbursement)
	r.Post("/api/payment/request", h.publishRequest)
	return r
}

func (h *Handler) triggerDisbursement(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TriggerDisbursement")
	defer span.End()

	h.logRequestHeaders(r)

	req := sampleDisbursementRequest()

	e := event.New()
	e.SetID(uuid.NewString())
	e.SetSource("payment-service")
	e.SetType(disbursement.EventType)
	e.SetTime(time.Now().UTC())
	if err := e.SetData(event.ApplicationJSON, req); err != nil {
		http.Error(w, "failed to build cloudevent: "+err.Error(), http.StatusInternalServerError)
		return
	}

	value, err := json.Marshal(e)
	if err != nil {
		http.Error(w, "failed to encode cloudevent: "+err.Error(), http.StatusInternalServerError)
		return
	}

	headers := tracing.InjectKafkaHeaders(ctx, []segkafka.Header{
		{Key: "content-type", Value: []byte(disbursement.StructuredContentType + "; charset=UTF-8")},
	})
	msg := segkafka.Message{
		Topic:   h.disbursementTopic,
		Key:     []byte(req.DisbursementID),
		Value:   value,
		Headers: headers,
	}
	if err := h.producer.WriteMessages(ctx, msg); err != nil {
		h.log.Error("failed to send disbursement request", "disbursement_id", req.DisbursementID, "err", err)
		http.Error(w, "failed to send payment request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Info("disbursement request sent", "disbursement_id", req.DisbursementID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":         "sent",
		"disbursementId": req.DisbursementID,
	})
}

func (h *Handler) publishRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PublishPaymentRequest")
	defer span.End()

	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	value, err := json.Marshal(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	msg := segkafka.Message{
		Topic:   h.requestTopic,
		Key:     []byte(req.PaymentID),
		Value:   value,
		Headers: tracing.InjectKafkaHeaders(ctx, nil),
	}
	if err := h.producer.WriteMessages(ctx, msg); err != nil {
		h.log.Error("failed to send payment request", "payment_id", req.PaymentID, "err", err)
		http.Error(w, "failed to send payment request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "accepted",
		"paymentId": req.PaymentID,
	})
}

// sampleDisbursementRequest mirrors the payload an upstream payment
// service would send, for manual end-to-end runs.
func sampleDisbursementRequest() disbursement.Request {
	return disbursement.Request{
		DisbursementID: uuid.NewString(),
		Recipient: disbursement.Recipient{
			Name:  "John Doe",
			Email: "john.doe@example.com",
			BankDetails: disbursement.BankAccountDetails{
				AccountNumber: "9876543210",
				SortCode:      "44-55-66",
				IBAN:          "GB29NWBK60161331926819",
			},
		},
		Amount: disbursement.Amount{
			Value:    decimal.NewFromFloat(2500.50),
			Currency: "USD",
		},
		PaymentMethod: disbursement.PaymentMethodBankTransfer,
		RequestedAt:   time.Now().UTC(),
		Metadata: map[string]string{
			"internalReference": "TXN-" + uuid.NewString()[:8],
			"notes":             "sample payment request triggered via REST API",
		},
	}
}

func (h *Handler) logRequestHeaders(r *http.Request) {
	h.log.Info("trigger request received", "method", r.Method, "uri", r.RequestURI, "remote_addr", r.RemoteAddr)
	for name, values := range r.Header {
		for _, v := range values {
			h.log.Debug("http header", "key", name, "value", v)
		}
	}
}
