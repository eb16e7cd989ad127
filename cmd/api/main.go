package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tdnguyen/moneymanager/internal/analysis"
	"github.com/tdnguyen/moneymanager/internal/api/handlers"
	"github.com/tdnguyen/moneymanager/internal/api/middleware"
	"github.com/tdnguyen/moneymanager/internal/classify"
	"github.com/tdnguyen/moneymanager/internal/jobs"
	"github.com/tdnguyen/moneymanager/internal/jobs/inmemory"
	"github.com/tdnguyen/moneymanager/internal/logger"
	"github.com/tdnguyen/moneymanager/internal/objectstore"
	"github.com/tdnguyen/moneymanager/internal/ocr"
	"github.com/tdnguyen/moneymanager/internal/scan"
	storebq "github.com/tdnguyen/moneymanager/internal/store/bigquery"
)

func main() {
	// Local development reads settings from .env; missing file is fine.
	_ = godotenv.Load()

	var (
		port    = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		project = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		dataset = flag.String("dataset", envOr("BQ_DATASET", "finance"), "BigQuery dataset name")
		bucket  = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for uploaded receipt images (or set GCS_BUCKET env)")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("No GCP project configured - set -project or GCP_PROJECT")
	}

	ctx := context.Background()

	// Ledger repository.
	repo, err := storebq.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger repository")
	}
	defer repo.Close()

	ledger := storebq.NewLedger(repo)
	analysisSvc := analysis.NewService(ledger, log)

	// Scan pipeline dependencies.
	classifier, err := classify.NewClassifier(classify.DefaultTrainingPairs())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to train category classifier")
	}

	detector, err := ocr.NewGeminiDetector(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create text detector")
	}
	scanner := scan.NewScanner(detector, classifier)

	imageStore, err := objectstore.NewGCSImageStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image store")
	}
	defer imageStore.Close()

	// Job infrastructure. In-memory only; the worker runs in-process.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := jobs.NewScanReceiptHandler(scanner, imageStore, log)
	go func() {
		log.Info().Msg("Starting scan job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Scan job worker stopped with error")
		}
	}()

	// Handlers.
	analysisHandler := handlers.NewAnalysisHandler(analysisSvc, log)
	receiptsHandler := handlers.NewReceiptsHandler(scanner, jobQueue, imageStore, *bucket, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	categoriesHandler := handlers.NewCategoriesHandler(classifier, ledger, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/analysis/breakdown", get(analysisHandler.CategoryBreakdown))
	mux.HandleFunc("/api/analysis/trend", get(analysisHandler.MonthlyTrend))
	mux.HandleFunc("/api/analysis/insights", get(analysisHandler.Insights))
	mux.HandleFunc("/api/analysis/forecast", get(analysisHandler.Forecast))

	mux.HandleFunc("/api/receipts/scan", post(receiptsHandler.ScanReceipt))
	mux.HandleFunc("/api/receipts/scan-jobs", post(receiptsHandler.EnqueueScan))
	mux.HandleFunc("/api/receipts/upload", post(receiptsHandler.UploadReceipt))

	mux.HandleFunc("/api/categories", get(categoriesHandler.ListCategories))
	mux.HandleFunc("/api/categories/predict", get(categoriesHandler.PredictCategory))

	mux.HandleFunc("/api/jobs", get(jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// get allows only GET on a route.
func get(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodGet, h)
}

// post allows only POST on a route.
func post(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodPost, h)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
