// Package main is the entry point for the frontier portfolio optimization API.
//
// The server estimates a risk/return optimal long-only allocation for a list of
// tickers by Monte Carlo sampling of portfolio weights, and reports drawdown and
// downside diagnostics for the selected portfolio.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/di"
	"github.com/aristath/frontier/internal/server"
	"github.com/aristath/frontier/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || cfg.DevMode,
	})

	log.Info().
		Str("provider", cfg.Prices.Provider).
		Str("period", cfg.Prices.Period).
		Str("interval", cfg.Prices.Interval).
		Msg("Starting frontier")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, _, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	var cacheDB server.HealthChecker
	var cacheStats server.CacheStatsReader
	if container.CacheDB != nil {
		cacheDB = container.CacheDB
		cacheStats = container.ClientDataRepo
	}

	srv := server.New(server.Config{
		Log:            log,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Optimizer:      container.OptimizerService,
		Quotes:         container.QuoteService,
		CacheDB:        cacheDB,
		CacheStats:     cacheStats,
		Jobs:           container.Scheduler,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
