package ticket

import (
	"context"
	"time"
)

// UpsertResult describes what an upsert did. Previous is the stored ticket
// before the write and is nil for inserts. A stale upsert wrote nothing
// because the stored remote update time was newer.
type UpsertResult struct {
	IsNew    bool
	Stale    bool
	Previous *Ticket
	Current  *Ticket
}

// StatusPatch is the narrow update applied when a ticket closes remotely.
type StatusPatch struct {
	Status        string
	Resolution    *string
	ResolvedAt    *time.Time
	AssigneeName  *string
	AssigneeEmail *string
	UpdatedAt     time.Time
	SyncedAt      time.Time
}

// ListFilter selects tickets for read queries.
type ListFilter struct {
	Status     string
	ProjectKey string
	OpenOnly   bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Repository persists tickets keyed by external key.
type Repository interface {
	Upsert(ctx context.Context, t *Ticket) (*UpsertResult, error)
	ApplyStatusUpdate(ctx context.Context, key string, patch StatusPatch) (*Ticket, error)
	GetByKey(ctx context.Context, key string) (*Ticket, error)
	ListOpen(ctx context.Context, closedStatuses []string) ([]*Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]*Ticket, int64, error)
	Count(ctx context.Context) (int64, error)
	CountSyncedSince(ctx context.Context, since time.Time) (int64, error)
}

// HistoryRepository persists ticket history entries.
type HistoryRepository interface {
	Append(ctx context.Context, entries []*HistoryEntry) error
	// ReplaceForKey deletes all history of jiraKey and inserts entries in one
	// transaction.
	ReplaceForKey(ctx context.Context, jiraKey string, entries []*HistoryEntry) error
	ListByKey(ctx context.Context, jiraKey string, limit int) ([]*HistoryEntry, error)
}
