package usecases

import (
	"context"
	"time"

	"github.com/metashield/jirasync/internal/domain/syncrun"
)

// SyncResult summarises one orchestrator invocation.
type SyncResult struct {
	RunID           uint    `json:"runId"`
	SyncType        string  `json:"syncType"`
	Status          string  `json:"status"`
	Success         bool    `json:"success"`
	Processed       int     `json:"processed"`
	Created         int     `json:"created"`
	Updated         int     `json:"updated"`
	Failed          int     `json:"failed"`
	Resolved        int     `json:"resolved"`
	HistoryFailures int     `json:"historyFailures"`
	DurationSeconds int     `json:"durationSeconds"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	FailureRatio    float64 `json:"failureRatio"`
}

func newSyncResult(run *syncrun.SyncRun, c syncrun.Counters, historyFailures int) *SyncResult {
	res := &SyncResult{
		RunID:           run.ID(),
		SyncType:        string(run.Type()),
		Status:          string(run.Status()),
		Success:         run.Status().IsSuccessful(),
		Processed:       c.Processed,
		Created:         c.Created,
		Updated:         c.Updated,
		Failed:          c.Failed,
		Resolved:        c.Resolved,
		HistoryFailures: historyFailures,
		DurationSeconds: run.DurationSeconds(),
		FailureRatio:    c.FailureRatio(),
	}
	if msg := run.ErrorMessage(); msg != nil {
		res.ErrorMessage = *msg
	}
	return res
}

// SleepFunc pauses between batches and returns early when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
