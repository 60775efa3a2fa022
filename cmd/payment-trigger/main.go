package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	triggerhttp "github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/http"
	"github.com/ruyalabs/payment-pipeline/internal/payment/infrastructure/kafka"
	"github.com/ruyalabs/payment-pipeline/pkg/idempotency"
	"github.com/ruyalabs/payment-pipeline/pkg/logging"
	"github.com/ruyalabs/payment-pipeline/pkg/shutdown"
	"github.com/ruyalabs/payment-pipeline/pkg/tracing"
)

func main() {
	log := logging.New(env("LOG_LEVEL", "info"))
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	brokers := strings.Split(env("KAFKA_ADDR", "localhost:9092"), ",")
	redisAddr := env("REDIS_ADDR", "localhost:6379")
	otlpAddr := env("OTLP_ADDR", "localhost:4318")
	httpAddr := env("HTTP_ADDR", ":8080")

	requestTopic := env("TOPIC_PAYMENT_REQUEST", "payment-request")
	disbursementRequestTopic := env("TOPIC_DISBURSEMENT_REQUEST", "payment-disbursement-request")

	tp, err := tracing.Init(ctx, "payment-trigger", otlpAddr, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if err := kafka.EnsureTopics(ctx, brokers, requestTopic, disbursementRequestTopic); err != nil {
		log.Error("topic provisioning failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, 10*time.Minute)

	writer := kafka.NewWriter(brokers)
	defer writer.Close()

	handler := triggerhttp.NewHandler(log, writer, requestTopic, disbursementRequestTopic, idem)
	srv := &http.Server{Addr: httpAddr, Handler: handler.Routes()}

	go func() {
		log.Info("payment-trigger listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	log.Info("payment-trigger shutdown")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
