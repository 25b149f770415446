package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fihircio/raikan-service/internal/cleanup"
	"github.com/fihircio/raikan-service/internal/config"
	"github.com/fihircio/raikan-service/internal/services/objectstore"
	"github.com/fihircio/raikan-service/internal/storage/postgres"
)

func main() {
	// Load config
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Initialize database connection
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	logger.Info("Connected to Postgres database")

	store, err := objectstore.NewClient(&cfg.S3)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	job := cleanup.New(storage, store, cfg.Thumbnails, cfg.Cleanup.MinObjectAge, logger)

	scheduler, err := cleanup.NewScheduler(job, &cfg.Cleanup, logger)
	if err != nil {
		log.Fatal("Invalid cleanup schedule:", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start the scheduler
	scheduler.Run(ctx)

	logger.Info("Cleanup worker stopped")
}
