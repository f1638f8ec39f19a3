package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/order-saga/inventory-service/config"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.ServiceName, cfg.Log.Level, cfg.Log.Pretty)
	zlog.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("messaging", cfg.Messaging.Driver).Msg("starting inventory-service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.BuildDependencies(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to build dependencies")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zlog.Error().Err(err).Msg("error closing dependencies")
		}
	}()

	if err := deps.EventSubscriber.Subscribe(ctx, events.OrderRequestsPattern, deps.EventRouter); err != nil {
		zlog.Fatal().Err(err).Msg("failed to start event subscriber")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down inventory-service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server forced to shutdown")
	}
}
