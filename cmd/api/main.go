// Package main implements the HTTP API server for Songstack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/dsjohal14/songstack/internal/http"
	"github.com/dsjohal14/songstack/internal/libs/config"
	"github.com/dsjohal14/songstack/internal/libs/obs"
	"github.com/dsjohal14/songstack/internal/scope/db"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

// run wires and serves the API, returning the process exit code
func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to initialize store")
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	}()

	// Create HTTP handler
	handler := apihttp.NewHandler(store, obs.Logger("songs"),
		apihttp.WithConflictStatus(cfg.ConflictStatus),
		apihttp.WithStoreTimeout(cfg.StoreTimeout),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apihttp.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	if err := serve(srv, stop, logger); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return 1
	}
	return 0
}

// serve runs srv until it fails or a signal arrives on stop, then shuts it
// down gracefully. A listener failure is returned as an error.
func serve(srv *http.Server, stop <-chan os.Signal, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStore connects the configured backend and reseeds it when SEED_ON_START is set
func openStore(cfg *config.Config, logger zerolog.Logger) (db.Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", cfg.StoreBackend).Msg("store connected")

	if !cfg.SeedOnStart {
		return store, nil
	}

	n, err := db.Seed(ctx, store, cfg.SeedFile)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	logger.Warn().
		Int("songs", n).
		Str("seed_file", cfg.SeedFile).
		Msg("collection dropped and reseeded")

	return store, nil
}
