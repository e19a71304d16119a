package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/felippelopes128-arch/lazy-backend/pkg/api"
	zerologadapter "github.com/felippelopes128-arch/lazy-backend/pkg/subscription/logger/zerolog"
	"github.com/felippelopes128-arch/lazy-backend/pkg/webhook"
	prommetrics "github.com/felippelopes128-arch/lazy-backend/pkg/webhook/metrics/prometheus"
	"github.com/felippelopes128-arch/lazy-backend/storage/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Configuration is read once at startup and passed explicitly; no
	// component reads ambient globals.
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}
	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		logger.Warn().Msg("WEBHOOK_SECRET is empty, webhook authentication is disabled")
	}
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	storeConfig := postgres.DefaultConfig()
	storeConfig.ConnectionString = databaseURL
	store, err := postgres.New(ctx, storeConfig)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	log := zerologadapter.NewLogger(logger)

	webhookHandler, err := webhook.NewHandler(webhook.Config{
		Store:   store,
		Secret:  secret,
		Logger:  log,
		Metrics: prommetrics.DefaultMetrics("lazybackend"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create webhook handler")
	}

	apiHandler, err := api.NewHandler(api.Config{Store: store, Logger: log})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create api handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", apiHandler.Root)
	r.Get("/health", apiHandler.Health)
	r.Get("/status", apiHandler.GetStatus)
	r.Post("/webhook/kiwify", webhookHandler.ServeHTTP)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info().Str("address", listenAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
