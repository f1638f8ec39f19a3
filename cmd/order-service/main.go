package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/config"
	"github.com/draftea/order-saga/order-service/handlers"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/logging"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.ServiceName, cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zlog.Fatal().Err(err).Msg("order-service stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	zlog.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("storage", cfg.Storage.Driver).
		Str("messaging", cfg.Messaging.Driver).
		Bool("redis", cfg.Redis.Enabled).
		Msg("starting order-service")

	deps, err := config.BuildDependencies(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to build dependencies")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zlog.Error().Err(err).Msg("error closing dependencies")
		}
	}()

	ctx = telemetry.WithTelemetry(ctx, deps.Telemetry)

	if deps.RedisNotifier != nil {
		if err := deps.RedisNotifier.Start(ctx); err != nil {
			return err
		}
	}

	if err := deps.EventSubscriber.Subscribe(ctx, events.OrderRepliesPattern, deps.EventRouter); err != nil {
		return errors.Wrap(err, "failed to start event subscriber")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(deps),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info().Msg("shutting down order-service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Redrive.Enabled {
		g.Go(func() error {
			runRedrive(gctx, deps.RedriveStalledOrders, cfg.Redrive)
			return nil
		})
	}

	return g.Wait()
}

// runRedrive sweeps stalled orders every interval until ctx is done
func runRedrive(ctx context.Context, redrive *application.RedriveStalledOrders, cfg config.Redrive) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	cmd := &application.RedriveStalledOrdersCommand{StaleAfter: cfg.StaleAfter, BatchSize: cfg.BatchSize}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := redrive.Execute(zlog.Logger.WithContext(ctx), cmd); err != nil {
				zlog.Error().Err(err).Msg("redrive sweep failed")
			}
		}
	}
}

func setupRouter(deps *config.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if deps.Telemetry != nil {
		r.Use(telemetry.Middleware(deps.Telemetry))
	}

	handlers.RegisterOperationalRoutes(r, deps.HealthChecks...)
	deps.OrderHandlers.RegisterRoutes(r)

	return r
}
