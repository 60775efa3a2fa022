package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_pipeline_records_consumed_total",
		Help: "Total number of records fetched from the bus, labelled by topic.",
	}, []string{"topic"})

	RequestsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_pipeline_requests_forwarded_total",
		Help: "Total number of payment requests forwarded to the execution topic.",
	})

	ErrorResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_pipeline_error_responses_total",
		Help: "Total number of synthesized error responses, labelled by error code.",
	}, []string{"error_code"})

	ResponsesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_pipeline_responses_relayed_total",
		Help: "Total number of execution responses re-published to the caller topic.",
	})

	EnvelopeRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_pipeline_envelope_rejections_total",
		Help: "Total number of CloudEvents records dropped, labelled by the violated attribute.",
	}, []string{"attribute"})

	Escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_pipeline_ops_escalations_total",
		Help: "Total number of last-resort operations notifications.",
	})

	EmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_pipeline_response_emit_duration_seconds",
		Help:    "Latency of response publishes to the bus.",
		Buckets: prometheus.DefBuckets,
	})
)
