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

	"taskapi/internal/api"
	"taskapi/internal/config"
	"taskapi/internal/db"
	"taskapi/internal/logging"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	if err := run(); err != nil {
		log.Fatalf("taskapi: %v", err)
	}
}

// run returns only after every resource it opened has been closed, so main
// can exit non-zero without skipping cleanup.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logger.Info("Starting task API...")

	// Initialize database
	database, err := db.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.Register(e, api.FromDB(database), logger)

	// Set up signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("addr", cfg.Server.Addr).Info("HTTP server listening")
	if err := serve(ctx, e, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	logger.Info("Application shutdown complete")
	return nil
}

// serve runs e on addr until ctx is cancelled or the listener fails, then
// shuts it down gracefully. A listener failure is returned even when the
// shutdown itself succeeds.
func serve(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("error running server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("error during shutdown: %w", err))
	}
	return runErr
}
