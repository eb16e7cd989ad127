// Package handlers implements the HTTP endpoints: analysis queries, receipt
// scanning and job tracking. Every data endpoint is owner-scoped through the
// X-Owner-ID header.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tdnguyen/moneymanager/internal/api/middleware"
	"github.com/tdnguyen/moneymanager/internal/domain"
	"github.com/tdnguyen/moneymanager/internal/forecast"
	"github.com/tdnguyen/moneymanager/internal/insight"
	"github.com/tdnguyen/moneymanager/internal/jobs"
	"github.com/tdnguyen/moneymanager/internal/logger"
	"github.com/tdnguyen/moneymanager/internal/receipt"
	"github.com/tdnguyen/moneymanager/internal/report"
	"github.com/tdnguyen/moneymanager/internal/scan"
)

const (
	ownerHeader = "X-Owner-ID"

	// maxImageBytes caps a synchronous scan upload.
	maxImageBytes = 10 << 20

	defaultTrendMonths = 6
)

// ownerID pulls the owner from the request header; empty means the request
// cannot be served.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := r.Header.Get(ownerHeader)
	if owner == "" {
		middleware.WriteError(w, http.StatusBadRequest, ownerHeader+" header is required")
		return "", false
	}
	return owner, true
}

// AnalysisService is the service surface the analysis endpoints call.
type AnalysisService interface {
	CategoryBreakdown(ctx context.Context, ownerID string, month time.Time) ([]report.CategoryBreakdown, error)
	MonthlyTrend(ctx context.Context, ownerID string, lastMonths int) ([]report.MonthlyTrend, error)
	AnalysisReport(ctx context.Context, ownerID string) (insight.Report, error)
	ForecastNextWeek(ctx context.Context, ownerID string) ([]forecast.Point, error)
}

// AnalysisHandler handles the analysis endpoints.
type AnalysisHandler struct {
	svc AnalysisService
	log zerolog.Logger
}

func NewAnalysisHandler(svc AnalysisService, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, log: log}
}

// CategoryBreakdown handles GET /api/analysis/breakdown?month=YYYY-MM
func (h *AnalysisHandler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	month := time.Now().UTC()
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		parsed, err := time.Parse("2006-01", monthStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid month format, want YYYY-MM")
			return
		}
		month = parsed
	}

	breakdown, err := h.svc.CategoryBreakdown(r.Context(), owner, month)
	if err != nil {
		log := logger.WithOwner(h.log, owner)
		log.Error().Err(err).Msg("Failed to compute breakdown")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute breakdown")
		return
	}

	if breakdown == nil {
		breakdown = []report.CategoryBreakdown{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month":     month.Format("2006-01"),
		"breakdown": breakdown,
	})
}

// MonthlyTrend handles GET /api/analysis/trend?months=N
func (h *AnalysisHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	months := defaultTrendMonths
	if monthsStr := r.URL.Query().Get("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil || parsed <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = parsed
	}

	trend, err := h.svc.MonthlyTrend(r.Context(), owner, months)
	if err != nil {
		log := logger.WithOwner(h.log, owner)
		log.Error().Err(err).Msg("Failed to compute trend")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute trend")
		return
	}

	if trend == nil {
		trend = []report.MonthlyTrend{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": months,
		"trend":  trend,
	})
}

// Insights handles GET /api/analysis/insights
func (h *AnalysisHandler) Insights(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	rep, err := h.svc.AnalysisReport(r.Context(), owner)
	if err != nil {
		log := logger.WithOwner(h.log, owner)
		log.Error().Err(err).Msg("Failed to generate insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	if rep.Details == nil {
		rep.Details = []insight.Item{}
	}
	middleware.WriteJSON(w, http.StatusOK, rep)
}

// Forecast handles GET /api/analysis/forecast
func (h *AnalysisHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	points, err := h.svc.ForecastNextWeek(r.Context(), owner)
	if err != nil {
		log := logger.WithOwner(h.log, owner)
		log.Error().Err(err).Msg("Failed to compute forecast")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute forecast")
		return
	}

	if points == nil {
		points = []forecast.Point{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
		"count":  len(points),
	})
}

// ReceiptScanner runs the scan pipeline over one image.
type ReceiptScanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (scan.Result, error)
}

// ImageUploader stores a receipt image and returns its gs:// URI.
type ImageUploader interface {
	Upload(ctx context.Context, bucket, object string, data []byte) (string, error)
}

// ReceiptsHandler handles receipt scanning: synchronous, queued by URI, and
// upload-then-queue.
type ReceiptsHandler struct {
	scanner   ReceiptScanner
	publisher jobs.Publisher
	uploader  ImageUploader
	bucket    string
	log       zerolog.Logger
}

// NewReceiptsHandler wires the scan endpoints. uploader and bucket may be
// zero when the deployment has no upload bucket; the upload route then
// reports itself unavailable.
func NewReceiptsHandler(scanner ReceiptScanner, publisher jobs.Publisher, uploader ImageUploader, bucket string, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{scanner: scanner, publisher: publisher, uploader: uploader, bucket: bucket, log: log}
}

// readImageBody reads and bounds the image payload; a false return means the
// error response was already written.
func readImageBody(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read image body")
		return nil, "", false
	}
	if len(image) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Image body is required")
		return nil, "", false
	}
	if len(image) > maxImageBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10MB limit")
		return nil, "", false
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return image, mimeType, true
}

// ScanReceipt handles POST /api/receipts/scan. The request body is the image;
// the scan runs inline and the result is returned directly.
func (h *ReceiptsHandler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	log := logger.WithOwner(h.log, owner)

	image, mimeType, ok := readImageBody(w, r)
	if !ok {
		return
	}

	result, err := h.scanner.Scan(r.Context(), image, mimeType)
	if err != nil {
		log.Error().Err(err).Msg("Receipt scan failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Receipt scan failed")
		return
	}

	log.Info().Str("vendor", result.VendorName).
		Str("category", result.SuggestedCategory).Msg("Receipt scanned")
	middleware.WriteJSON(w, http.StatusOK, result)
}

// UploadReceipt handles POST /api/receipts/upload. The request body is the
// image; it is stored in the receipt bucket and a scan job is enqueued for
// it.
func (h *ReceiptsHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	log := logger.WithOwner(h.log, owner)

	if h.uploader == nil || h.bucket == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Receipt upload is not configured")
		return
	}

	image, mimeType, ok := readImageBody(w, r)
	if !ok {
		return
	}

	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}
	object := fmt.Sprintf("receipts/%s/%s%s", owner, uuid.NewString(), ext)

	gcsURI, err := h.uploader.Upload(r.Context(), h.bucket, object, image)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upload receipt image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload receipt image")
		return
	}

	job := &jobs.ScanReceiptJob{
		OwnerID:  owner,
		GCSURI:   gcsURI,
		MimeType: mimeType,
	}
	if err := h.publisher.PublishScanReceipt(r.Context(), job); err != nil {
		log.Error().Err(err).Str("gcs_uri", gcsURI).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("gcs_uri", gcsURI).Msg("Receipt uploaded and scan enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"status":  string(job.Status),
		"gcs_uri": gcsURI,
	})
}

// EnqueueScan handles POST /api/receipts/scan-jobs. The image must already be
// in GCS; the scan happens asynchronously.
func (h *ReceiptsHandler) EnqueueScan(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	log := logger.WithOwner(h.log, owner)

	var req struct {
		GCSURI   string `json:"gcs_uri"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri is required")
		return
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}

	job := &jobs.ScanReceiptJob{
		OwnerID:  owner,
		GCSURI:   req.GCSURI,
		MimeType: req.MimeType,
	}
	if err := h.publisher.PublishScanReceipt(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("gcs_uri", job.GCSURI).Msg("Scan job enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job tracking endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		OwnerID: r.Header.Get(ownerHeader),
		Status:  jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	if jobsList == nil {
		jobsList = []*jobs.ScanReceiptJob{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// CategoryLister serves the stored category taxonomy.
type CategoryLister interface {
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoriesHandler handles the category taxonomy and prediction.
type CategoriesHandler struct {
	predictor scan.CategoryPredictor
	lister    CategoryLister
	log       zerolog.Logger
}

func NewCategoriesHandler(predictor scan.CategoryPredictor, lister CategoryLister, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{predictor: predictor, lister: lister, log: log}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.lister.ListActiveCategories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// PredictCategory handles GET /api/categories/predict?vendor=
func (h *CategoriesHandler) PredictCategory(w http.ResponseWriter, r *http.Request) {
	vendor := r.URL.Query().Get("vendor")
	if vendor == "" {
		middleware.WriteError(w, http.StatusBadRequest, "vendor query parameter is required")
		return
	}

	normalized := receipt.NormalizeVendor(vendor)
	category := h.predictor.Predict(normalized)

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"vendor":           vendor,
		"normalizedVendor": normalized,
		"category":         category,
	})
}
