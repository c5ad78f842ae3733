package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trendmine/internal/app"
	"trendmine/internal/common/camunda"
	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/observability"
	"trendmine/internal/events"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"

	as "trendmine/internal/workers/trends/aggregate-signals"
	gi "trendmine/internal/workers/trends/generate-ideas"
)

const healthAddr = ":8081"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("service", "worker-manager"))
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager", log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var genOpts []ideas.Option
	if cfg.NATS.Enabled() {
		nc, err := events.Connect(cfg.NATS, log)
		if err != nil {
			zapLog.Warn("NATS unavailable, generation events disabled", zap.Error(err))
		} else {
			defer nc.Close()
			genOpts = append(genOpts, ideas.WithPublisher(events.NewPublisher(nc, cfg.NATS.Subject, log)))
		}
	}

	aggregator := app.NewAggregator(cfg, log)
	generator := app.NewGenerator(cfg, log, genOpts...)

	// --- Workers ---
	started := 0

	if wcfg := config.GetWorkerConfig(cfg, as.TaskType); wcfg.Enabled {
		handlerCfg := as.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		if w := cfg.Sources.Defaults.TimeWindow; w != "" {
			handlerCfg.DefaultWindow = signals.TimeWindow(w)
		}
		if l := cfg.Sources.Defaults.Location; l != "" {
			handlerCfg.DefaultLocation = signals.Location(l)
		}
		handler := as.NewHandler(handlerCfg, aggregator, log)
		if zeebe.StartWorker(as.TaskType, wcfg, instrument(obs, as.TaskType, handler.Handle)) != nil {
			started++
		}
	}

	if wcfg := config.GetWorkerConfig(cfg, gi.TaskType); wcfg.Enabled {
		handlerCfg := gi.LoadConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := gi.NewHandler(handlerCfg, generator, log)
		if zeebe.StartWorker(gi.TaskType, wcfg, instrument(obs, gi.TaskType, handler.Handle)) != nil {
			started++
		}
	}
	zapLog.Info("Workers registered", zap.Int("count", started))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", healthAddr))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// instrument records every handled job on the OTel meter.
func instrument(obs *observability.Observability, taskType string, handle func(worker.JobClient, entities.Job)) func(worker.JobClient, entities.Job) {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handle(client, job)
		obs.RecordJob(context.Background(), taskType, time.Since(start))
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
