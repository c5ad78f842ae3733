package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trendmine/internal/app"
	"trendmine/internal/common/config"
	"trendmine/internal/common/database"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/observability"
	"trendmine/internal/events"
	"trendmine/internal/ideas"
	"trendmine/internal/server"
	"trendmine/internal/server/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("service", "trendmine-api"))
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("trendmine-api", log)
	defer obs.Shutdown()

	ready := map[string]handlers.ReadyCheck{}

	if cfg.Database.Redis.Address != "" {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		defer rc.Close()
		ready["redis"] = rc.Ping
	}

	var genOpts []ideas.Option
	if cfg.NATS.Enabled() {
		nc, err := events.Connect(cfg.NATS, log)
		if err != nil {
			zapLog.Warn("NATS unavailable, generation events disabled", zap.Error(err))
		} else {
			defer nc.Close()
			genOpts = append(genOpts, ideas.WithPublisher(events.NewPublisher(nc, cfg.NATS.Subject, log)))
			ready["nats"] = func(ctx context.Context) error {
				if !nc.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			}
		}
	}

	if cfg.Generator.APIKey == "" {
		zapLog.Warn("GENERATOR_API_KEY is not set, idea generation will fail")
	}

	srv := server.NewServer(cfg.Server, server.Dependencies{
		Aggregator:    app.NewAggregator(cfg, log),
		Generator:     app.NewGenerator(cfg, log, genOpts...),
		ReadyChecks:   ready,
		Observability: obs,
	}, log)

	go func() {
		zapLog.Info("API listening", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received")
	timeout := config.GetDuration(cfg.Server.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("API stopped")
}
