package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tdnguyen/moneymanager/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ScanReceiptJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job never reached %s, last state: %+v", want, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Close()

	var handled atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		handled.Add(1)
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ScanReceiptJob{OwnerID: "owner-1", GCSURI: "gs://receipts/r1.jpg"}
	if err := q.PublishScanReceipt(context.Background(), job); err != nil {
		t.Fatalf("PublishScanReceipt: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("publish must assign a job ID")
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if handled.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", handled.Load())
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("completed job must carry start and completion times")
	}
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	q := NewQueue(4, store)
	defer q.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return errors.New("detector down")
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ScanReceiptJob{OwnerID: "owner-1", GCSURI: "gs://receipts/r1.jpg", MaxRetries: 1}
	if err := q.PublishScanReceipt(context.Background(), job); err != nil {
		t.Fatalf("PublishScanReceipt: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", failed.RetryCount)
	}
	if failed.Error == "" {
		t.Error("failed job must keep its error message")
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(1, NewStore())
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	err := q.PublishScanReceipt(context.Background(), &jobs.ScanReceiptJob{})
	if err == nil {
		t.Fatal("publish on a closed queue must fail")
	}
}

func TestStore_ListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now()
	seed := []*jobs.ScanReceiptJob{
		{JobID: "j1", OwnerID: "a", Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "j2", OwnerID: "a", Status: jobs.JobStatusPending, CreatedAt: base.Add(time.Second)},
		{JobID: "j3", OwnerID: "b", Status: jobs.JobStatusPending, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{OwnerID: "a"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("owner filter returned %d jobs, want 2", len(got))
	}
	// Newest first.
	if got[0].JobID != "j2" || got[1].JobID != "j1" {
		t.Errorf("order = %s, %s; want j2, j1", got[0].JobID, got[1].JobID)
	}

	got, err = store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusPending, Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "j3" {
		t.Errorf("status filter with limit = %+v, want only j3", got)
	}
}
