package syncsetting

import (
	"context"
	"time"
)

// Repository defines the interface for sync setting persistence
type Repository interface {
	// Get retrieves a setting by key. Returns ErrSettingNotFound when absent.
	Get(ctx context.Context, key string) (*Setting, error)

	GetAll(ctx context.Context) ([]*Setting, error)

	// Upsert creates or overwrites a setting
	Upsert(ctx context.Context, setting *Setting) error

	// InsertIfAbsent stores setting unless the key exists and reports whether
	// it was inserted.
	InsertIfAbsent(ctx context.Context, setting *Setting) (bool, error)

	// SetTime stores a time-valued setting
	SetTime(ctx context.Context, key string, t time.Time) error
}
