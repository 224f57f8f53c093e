package syncrun

import "context"

// Repository persists sync runs. Runs are never deleted.
type Repository interface {
	Create(ctx context.Context, run *SyncRun) error
	Update(ctx context.Context, run *SyncRun) error
	GetByID(ctx context.Context, id uint) (*SyncRun, error)

	// ListRunning returns runs still in the running state.
	ListRunning(ctx context.Context) ([]*SyncRun, error)

	// LastSuccessful returns the most recent completed or partial run of
	// syncType, or nil when there is none.
	LastSuccessful(ctx context.Context, syncType Type) (*SyncRun, error)

	ListRecent(ctx context.Context, limit int) ([]*SyncRun, error)
}
