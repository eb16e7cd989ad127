package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdnguyen/moneymanager/internal/jobs"
)

// Store keeps scan jobs in memory, newest first in listings. Safe for
// concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ScanReceiptJob
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.ScanReceiptJob)}
}

// SaveJob inserts or replaces a job. The job is copied so later mutations by
// the queue do not leak into readers.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ScanReceiptJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob returns a copy of the job, or an error when unknown.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ScanReceiptJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs returns filtered job copies ordered newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ScanReceiptJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.ScanReceiptJob
	for _, job := range s.jobs {
		if filter.OwnerID != "" && job.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.ScanReceiptJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
