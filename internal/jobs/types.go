// Package jobs defines the asynchronous receipt scanning job and the queue
// abstractions around it.
package jobs

import (
	"context"
	"time"

	"github.com/tdnguyen/moneymanager/internal/scan"
)

// JobType identifies what a job does.
type JobType string

const (
	// JobTypeScanReceipt is a receipt image scanning job.
	JobTypeScanReceipt JobType = "scan_receipt"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ScanReceiptJob scans one receipt image stored in GCS. The scan result is
// attached to the job on completion so the API can poll for it.
type ScanReceiptJob struct {
	JobID   string `json:"job_id"`
	OwnerID string `json:"owner_id"`

	// GCSURI points at the receipt image to scan.
	GCSURI string `json:"gcs_uri"`

	// MimeType of the stored image, e.g. "image/jpeg".
	MimeType string `json:"mime_type"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last failure message; cleared on success.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Result is set once the job completes successfully.
	Result *scan.Result `json:"result,omitempty"`
}

// Job is the generic view of a queued unit of work.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ScanReceiptJob) GetID() string        { return j.JobID }
func (j *ScanReceiptJob) GetType() JobType     { return JobTypeScanReceipt }
func (j *ScanReceiptJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues scan jobs. The in-memory queue implements it; a Cloud
// Tasks or Pub/Sub queue can replace it without touching callers.
type Publisher interface {
	PublishScanReceipt(ctx context.Context, job *ScanReceiptJob) error
	Close() error
}

// Consumer drains the queue and hands jobs to a handler.
type Consumer interface {
	// Start begins consuming. The handler runs once per delivery; a
	// returned error triggers the retry policy.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// JobHandler processes one job delivery.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can report progress and results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ScanReceiptJob) error
	GetJob(ctx context.Context, jobID string) (*ScanReceiptJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ScanReceiptJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	OwnerID string
	Status  JobStatus
	Limit   int
	Offset  int
}
