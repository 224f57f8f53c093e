// Package syncrun models the sync run ledger: one row per orchestrator
// invocation, opened as running and finalized exactly once.
package syncrun

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeFull        Type = "full"
	TypeIncremental Type = "incremental"
	TypeRealtime    Type = "realtime"
	TypeSetup       Type = "setup"
	TypeRefresh     Type = "refresh"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeFull, TypeIncremental, TypeRealtime, TypeSetup, TypeRefresh:
		return true
	}
	return false
}

type Source string

const (
	SourceAPI    Source = "api"
	SourceCron   Source = "cron"
	SourceManual Source = "manual"
	SourceCLI    Source = "cli"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceAPI, SourceCron, SourceManual, SourceCLI:
		return true
	}
	return false
}

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// IsSuccessful reports whether the run advanced its checkpoint.
func (s Status) IsSuccessful() bool {
	return s == StatusCompleted || s == StatusPartial
}

// Counters are the per-run record tallies.
type Counters struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
	Resolved  int `json:"resolved"`
}

// Add accumulates other into c.
func (c *Counters) Add(other Counters) {
	c.Processed += other.Processed
	c.Created += other.Created
	c.Updated += other.Updated
	c.Failed += other.Failed
	c.Resolved += other.Resolved
}

// FailureRatio returns failed / processed. With nothing processed it is 1
// when anything failed and 0 otherwise.
func (c Counters) FailureRatio() float64 {
	if c.Processed == 0 {
		if c.Failed > 0 {
			return 1
		}
		return 0
	}
	return float64(c.Failed) / float64(c.Processed)
}

// PartialThreshold is the failure ratio below which a run with failures is
// still considered partially successful.
const PartialThreshold = 0.10

// ClassifyBatchRun decides the terminal status of a full sync: completed
// without failures, partial under the threshold, failed otherwise.
func ClassifyBatchRun(c Counters) Status {
	switch {
	case c.Failed == 0:
		return StatusCompleted
	case c.FailureRatio() < PartialThreshold:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// ClassifyTolerantRun decides the terminal status of an incremental sync,
// which only fails on invocation-level errors.
func ClassifyTolerantRun(c Counters) Status {
	if c.Failed == 0 || c.FailureRatio() < PartialThreshold {
		return StatusCompleted
	}
	return StatusPartial
}

// SyncRun is one ledger entry.
type SyncRun struct {
	id           uint
	syncType     Type
	source       Source
	status       Status
	startedAt    time.Time
	completedAt  *time.Time
	dateFrom     *time.Time
	dateTo       *time.Time
	counters     Counters
	errorMessage *string
	details      map[string]any
}

// NewSyncRun opens a run in the running state.
func NewSyncRun(syncType Type, source Source, startedAt time.Time) (*SyncRun, error) {
	if !syncType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, syncType)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}
	return &SyncRun{
		syncType:  syncType,
		source:    source,
		status:    StatusRunning,
		startedAt: startedAt.UTC(),
	}, nil
}

// ReconstructSyncRun rebuilds a run from persistence.
func ReconstructSyncRun(
	id uint,
	syncType Type,
	source Source,
	status Status,
	startedAt time.Time,
	completedAt, dateFrom, dateTo *time.Time,
	counters Counters,
	errorMessage *string,
	details map[string]any,
) *SyncRun {
	return &SyncRun{
		id:           id,
		syncType:     syncType,
		source:       source,
		status:       status,
		startedAt:    startedAt,
		completedAt:  completedAt,
		dateFrom:     dateFrom,
		dateTo:       dateTo,
		counters:     counters,
		errorMessage: errorMessage,
		details:      details,
	}
}

// Getters
func (r *SyncRun) ID() uint                { return r.id }
func (r *SyncRun) Type() Type              { return r.syncType }
func (r *SyncRun) Source() Source          { return r.source }
func (r *SyncRun) Status() Status          { return r.status }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) DateFrom() *time.Time    { return r.dateFrom }
func (r *SyncRun) DateTo() *time.Time      { return r.dateTo }
func (r *SyncRun) Counters() Counters      { return r.counters }
func (r *SyncRun) ErrorMessage() *string   { return r.errorMessage }
func (r *SyncRun) Details() map[string]any { return r.details }

// SetID sets the run ID (only for persistence layer use)
func (r *SyncRun) SetID(id uint) {
	r.id = id
}

// SetWindow records the query bounds of the run.
func (r *SyncRun) SetWindow(from, to time.Time) {
	f, t := from.UTC(), to.UTC()
	r.dateFrom, r.dateTo = &f, &t
}

// SetDetail stores an extra diagnostic value on the run.
func (r *SyncRun) SetDetail(key string, value any) {
	if r.details == nil {
		r.details = make(map[string]any)
	}
	r.details[key] = value
}

// UpdateCounters replaces the running tallies.
func (r *SyncRun) UpdateCounters(c Counters) error {
	if r.status.IsTerminal() {
		return ErrRunFinalized
	}
	r.counters = c
	return nil
}

// Finish moves the run to a terminal state. It can only happen once.
func (r *SyncRun) Finish(status Status, c Counters, errMsg string, at time.Time) error {
	if r.status.IsTerminal() {
		return ErrRunFinalized
	}
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	completed := at.UTC()
	r.status = status
	r.counters = c
	r.completedAt = &completed
	if errMsg != "" {
		r.errorMessage = &errMsg
	}
	return nil
}

// DurationSeconds is the elapsed time of a finished run, 0 while running.
func (r *SyncRun) DurationSeconds() int {
	if r.completedAt == nil {
		return 0
	}
	return int(r.completedAt.Sub(r.startedAt).Seconds())
}

// RunningFor returns the elapsed time of a running run at now.
func (r *SyncRun) RunningFor(now time.Time) time.Duration {
	return now.Sub(r.startedAt)
}
