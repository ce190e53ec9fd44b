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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/apiweave/agentgate/internal/catalog"
	"github.com/apiweave/agentgate/internal/config"
	transport "github.com/apiweave/agentgate/internal/transport/http"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	log.Logger = log.Level(level)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("catalog_path", cfg.CatalogPath).Msg("failed to load catalog")
	}

	log.Info().
		Int("agents", cat.AgentCount()).
		Int("endpoints", cat.EndpointCount()).
		Str("environment", cfg.Environment).
		Msg("catalog loaded")

	e := transport.NewServer(cfg, cat, log.Logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		log.Info().Str("addr", addr).Str("public_base_url", cfg.PublicBaseURL).Msg("starting gateway")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("gateway server exited unexpectedly")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("gateway stopped")
}
