package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aulavista/facemark/internal/api"
	"github.com/aulavista/facemark/internal/config"
	"github.com/aulavista/facemark/internal/database"
	"github.com/aulavista/facemark/internal/face"
	"github.com/aulavista/facemark/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Facemark API",
		slog.String("environment", cfg.Environment),
		slog.String("provider", cfg.ProviderType),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Embedding provider: construct, then load models before serving
	embeddingProvider, err := face.NewEmbeddingProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	if err := embeddingProvider.Load(ctx); err != nil {
		return fmt.Errorf("failed to load embedding provider: %w", err)
	}
	logger.Info("embedding provider ready", slog.String("type", cfg.ProviderType))

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		RosterRepo:      repository.NewRosterRepository(pool),
		AttendanceRepo:  repository.NewAttendanceRepository(pool),
		RecognitionRepo: repository.NewRecognitionEventRepository(pool),
		Provider:        embeddingProvider,
		DB:              pool,
		MatchThreshold:  cfg.MatchThreshold,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
