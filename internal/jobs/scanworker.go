package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tdnguyen/moneymanager/internal/objectstore"
	"github.com/tdnguyen/moneymanager/internal/scan"
)

// Scanner runs the receipt pipeline over one image.
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (scan.Result, error)
}

// ImageFetcher loads the receipt image behind a gs:// URI.
type ImageFetcher interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// NewScanReceiptHandler builds the JobHandler both the API and the worker
// binary run: fetch the image, scan it, attach the result to the job.
func NewScanReceiptHandler(scanner Scanner, images ImageFetcher, log zerolog.Logger) JobHandler {
	return func(ctx context.Context, job Job) error {
		scanJob, ok := job.(*ScanReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("owner_id", scanJob.OwnerID).
			Str("object", objectstore.ObjectBase(scanJob.GCSURI)).
			Msg("Processing scan job")

		image, err := images.Fetch(ctx, scanJob.GCSURI)
		if err != nil {
			log.Error().Err(err).Str("job_id", scanJob.JobID).Msg("Failed to fetch receipt image")
			return fmt.Errorf("fetch image: %w", err)
		}

		result, err := scanner.Scan(ctx, image, scanJob.MimeType)
		if err != nil {
			log.Error().Err(err).Str("job_id", scanJob.JobID).Msg("Receipt scan failed")
			return fmt.Errorf("scan receipt: %w", err)
		}

		scanJob.Result = &result

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("vendor", result.VendorName).
			Str("category", result.SuggestedCategory).
			Msg("Scan job completed")
		return nil
	}
}
