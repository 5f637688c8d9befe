package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkravets/docvision/internal/bootstrap"
	"github.com/mkravets/docvision/internal/config"
	"github.com/mkravets/docvision/internal/observability/logging"
	"github.com/mkravets/docvision/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReprocess(ctx, func(handlerCtx context.Context, documentID string) error {
		workerMetrics.StartDocument()
		start := time.Now()

		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		reprocessErr := app.Reproc.ReprocessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(start), reprocessErr)
		docLogger := logging.WithDocument(logger, documentID)
		if reprocessErr != nil {
			docLogger.Error("reprocess failed", "error", reprocessErr)
		} else {
			docLogger.Info("reprocess done", "elapsed_ms", time.Since(start).Milliseconds())
		}
		return reprocessErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
