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

	"github.com/joho/godotenv"
	"github.com/mcdev12/flipmatch/go/internal/config"
	"github.com/mcdev12/flipmatch/go/internal/events"
	"github.com/mcdev12/flipmatch/go/internal/gateway"
	"github.com/mcdev12/flipmatch/go/internal/metrics"
	"github.com/mcdev12/flipmatch/go/internal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	publisher, closePublisher := setupPublisher(cfg.NATS)
	defer closePublisher()

	log.Info().
		Int("pair_count", cfg.Game.PairCount).
		Int("time_limit_seconds", cfg.Game.TimeLimitSeconds).
		Bool("start_gate", cfg.Game.StartGate).
		Str("port", cfg.Port).
		Msg("starting flipmatch gateway")

	// the gauge closure reads sessions, which is assigned before any scrape
	var sessions *session.Manager
	gameMetrics := metrics.New(func() int { return sessions.Count() })
	sessions = session.NewManager(cfg.Game,
		session.WithPublisher(events.MultiPublisher{publisher, gameMetrics}),
	)
	cm := gateway.NewConnectionManager(sessions, gateway.DefaultConnectionConfig(), nil)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      gateway.NewHandler(gateway.NewWebSocketHandler(cm), gameMetrics.Handler()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// hijacked websocket connections are not tracked by Shutdown
	sessions.Close()

	log.Info().Msg("flipmatch gateway shutdown complete")
}

// setupPublisher connects to NATS when configured and falls back to logging
// outcome events otherwise.
func setupPublisher(cfg events.NATSConfig) (events.Publisher, func()) {
	if cfg.URL == "" {
		log.Info().Msg("NATS_URL not set, logging game events")
		return events.LogPublisher{}, func() {}
	}

	pub, err := events.NewNATSPublisher(cfg)
	if err != nil {
		log.Error().Err(err).Str("nats_url", cfg.URL).Msg("failed to connect to NATS, logging game events")
		return events.LogPublisher{}, func() {}
	}
	log.Info().Str("nats_url", cfg.URL).Str("subject", cfg.Subject).Msg("publishing game events to NATS")

	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close NATS connection")
		}
	}
}
