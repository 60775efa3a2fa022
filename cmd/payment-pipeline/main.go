package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruyalabs/payment-pipeline/internal/disbursement"
	"github.com/ruyalabs/payment-pipeline/internal/payment/application"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/kafka"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/ops"
	"github.com/ruyalabs/payment-pipeline/pkg/logging"
	"github.com/ruyalabs/payment-pipeline/pkg/shutdown"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

func main() {
	log := logging.New(env("LOG_LEVEL", "info"))
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	brokers := strings.Split(env("KAFKA_ADDR", "localhost:9092"), ",")
	otlpAddr := env("OTLP_ADDR", "localhost:4318")
	metricsAddr := env("METRICS_ADDR", ":9090")

	requestTopic := env("TOPIC_PAYMENT_REQUEST", "payment-request")
	executionRequestTopic := env("TOPIC_PAYMENT_EXECUTION_REQUEST", "payment-execution-request")
	executionResponseTopic := env("TOPIC_PAYMENT_EXECUTION_RESPONSE", "payment-execution-response")
	responseTopic := env("TOPIC_PAYMENT_RESPONSE", "payment-response")
	disbursementResponseTopic := env("TOPIC_DISBURSEMENT_RESPONSE", "payment-disbursement-response")

	requestGroup := env("GROUP_PAYMENT_REQUEST", "payment-service")
	executionResponseGroup := env("GROUP_PAYMENT_EXECUTION_RESPONSE", "payment-response-service")
	disbursementGroup := env("GROUP_DISBURSEMENT_RESPONSE", "payment-disbursement-service")

	consumerCount, err := strconv.Atoi(env("CONSUMER_COUNT", "3"))
	if err != nil || consumerCount < 1 {
		consumerCount = 3
	}

	tp, err := tracing.Init(ctx, "payment-pipeline", otlpAddr, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if err := kafka.EnsureTopics(ctx, brokers,
		requestTopic,
		executionRequestTopic,
		executionResponseTopic,
		responseTopic,
		disbursementResponseTopic,
	); err != nil {
		log.Error("topic provisioning failed", "err", err)
		os.Exit(1)
	}

	writer := kafka.NewWriter(brokers)
	defer writer.Close()

	notifier := ops.NewLogNotifier(log)
	emitter := kafka.NewResponseEmitter(log, writer, notifier, 10*time.Second)
	forwarder := kafka.NewForwarder(log, writer, executionRequestTopic)

	ingestor := application.NewIngestor(log, forwarder, emitter, responseTopic)
	relay := application.NewRelay(log, emitter, responseTopic)

	// One reader per instance; the group spreads partitions across them so
	// each partition is processed serially while partitions run in parallel.
	for i := 0; i < consumerCount; i++ {
		consumer := kafka.NewRequestConsumer(log, brokers, requestTopic, requestGroup, ingestor)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("request consumer stopped", "err", err)
				cancel()
			}
		}()
	}

	relayConsumer := kafka.NewExecutionResponseConsumer(log, brokers, executionResponseTopic, executionResponseGroup, relay)
	go func() {
		if err := relayConsumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("execution response consumer stopped", "err", err)
			cancel()
		}
	}()

	disbursementConsumer := disbursement.NewConsumer(log, brokers, disbursementResponseTopic, disbursementGroup)
	go func() {
		if err := disbursementConsumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("disbursement consumer stopped", "err", err)
			cancel()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("payment-pipeline shutdown")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
