package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tdnguyen/moneymanager/internal/classify"
	"github.com/tdnguyen/moneymanager/internal/jobs"
	"github.com/tdnguyen/moneymanager/internal/jobs/inmemory"
	"github.com/tdnguyen/moneymanager/internal/logger"
	"github.com/tdnguyen/moneymanager/internal/objectstore"
	"github.com/tdnguyen/moneymanager/internal/ocr"
	"github.com/tdnguyen/moneymanager/internal/scan"
)

// Standalone scan worker. With the in-memory queue it only processes jobs
// published in-process; it exists as the deployment shape for a future
// Cloud Tasks or Pub/Sub backed queue.
func main() {
	_ = godotenv.Load()

	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	classifier, err := classify.NewClassifier(classify.DefaultTrainingPairs())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to train category classifier")
	}

	detector, err := ocr.NewGeminiDetector(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create text detector")
	}

	imageStore, err := objectstore.NewGCSImageStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image store")
	}
	defer imageStore.Close()

	scanner := scan.NewScanner(detector, classifier)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	handler := jobs.NewScanReceiptHandler(scanner, imageStore, log)
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
