// Package services holds the primitives shared by the sync orchestrators.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/infrastructure/metrics"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// Ledger opens, advances and closes sync runs.
type Ledger struct {
	runs   syncrun.Repository
	now    func() time.Time
	logger logger.Interface
}

func NewLedger(runs syncrun.Repository, logger logger.Interface) *Ledger {
	return &Ledger{
		runs:   runs,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// WithClock returns a copy of the ledger reading time from now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	cp := *l
	cp.now = now
	return &cp
}

// Now returns the ledger clock.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Open creates a running run. A failure here aborts the invocation.
func (l *Ledger) Open(ctx context.Context, syncType syncrun.Type, source syncrun.Source) (*syncrun.SyncRun, error) {
	run, err := syncrun.NewSyncRun(syncType, source, l.now())
	if err != nil {
		return nil, err
	}

	if err := l.runs.Create(ctx, run); err != nil {
		l.logger.Errorw("failed to open sync run", "sync_type", syncType, "error", err)
		return nil, fmt.Errorf("failed to open sync run: %w", err)
	}

	l.logger.Infow("sync run started",
		"run_id", run.ID(),
		"sync_type", syncType,
		"sync_source", source,
	)
	return run, nil
}

// Progress persists intermediate counters. Failures are logged only so a
// ledger hiccup never stops a batch loop.
func (l *Ledger) Progress(ctx context.Context, run *syncrun.SyncRun, c syncrun.Counters) {
	if err := run.UpdateCounters(c); err != nil {
		l.logger.Warnw("ignoring counter update", "run_id", run.ID(), "error", err)
		return
	}
	if err := l.runs.Update(ctx, run); err != nil {
		l.logger.Warnw("failed to persist sync run progress", "run_id", run.ID(), "error", err)
	}
}

// Close finalizes run with status and records its metrics.
func (l *Ledger) Close(ctx context.Context, run *syncrun.SyncRun, status syncrun.Status, c syncrun.Counters, errMsg string) error {
	if err := run.Finish(status, c, errMsg, l.now()); err != nil {
		return err
	}

	// A cancelled request context must not leave the run dangling in running.
	if err := l.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		l.logger.Errorw("failed to close sync run", "run_id", run.ID(), "status", status, "error", err)
		return fmt.Errorf("failed to close sync run: %w", err)
	}

	metrics.RecordSyncRun(string(run.Type()), string(status),
		time.Duration(run.DurationSeconds())*time.Second,
		c.Created, c.Updated, c.Failed, c.Resolved)

	fields := []interface{}{
		"run_id", run.ID(),
		"sync_type", run.Type(),
		"status", status,
		"processed", c.Processed,
		"created", c.Created,
		"updated", c.Updated,
		"failed", c.Failed,
		"resolved", c.Resolved,
		"duration_seconds", run.DurationSeconds(),
	}
	if status == syncrun.StatusFailed {
		l.logger.Warnw("sync run failed", append(fields, "error", errMsg)...)
	} else {
		l.logger.Infow("sync run finished", fields...)
	}

	return nil
}
