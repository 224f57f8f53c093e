package services

import (
	"context"
	"fmt"
	"time"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// HistoryRecorder turns detected field changes into history entries.
type HistoryRecorder struct {
	history ticket.HistoryRepository
	logger  logger.Interface
}

func NewHistoryRecorder(history ticket.HistoryRepository, logger logger.Interface) *HistoryRecorder {
	return &HistoryRecorder{
		history: history,
		logger:  logger,
	}
}

// Record appends one entry per change on current. The author is the sync
// process itself.
func (r *HistoryRecorder) Record(ctx context.Context, current *ticket.Ticket, changes []ticket.FieldChange, source ticket.ChangeSource, changedAt time.Time) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	entries := make([]*ticket.HistoryEntry, 0, len(changes))
	for _, change := range changes {
		entry, err := ticket.NewHistoryEntry(current.JiraKey(), change, ticket.Author{}, changedAt, source)
		if err != nil {
			return 0, err
		}
		entry.AttachTo(current.ID())
		entries = append(entries, entry)
	}

	if err := r.history.Append(ctx, entries); err != nil {
		r.logger.Errorw("failed to record ticket history",
			"jira_key", current.JiraKey(),
			"changes", len(changes),
			"error", err,
		)
		return 0, fmt.Errorf("failed to record history for %s: %w", current.JiraKey(), err)
	}

	r.logger.Debugw("ticket history recorded",
		"jira_key", current.JiraKey(),
		"changes", len(changes),
		"change_source", source,
	)
	return len(entries), nil
}

// Rebuild replaces the stored history of current with the remote changelog.
func (r *HistoryRecorder) Rebuild(ctx context.Context, current *ticket.Ticket, entries []*ticket.HistoryEntry) (int, error) {
	for _, entry := range entries {
		entry.AttachTo(current.ID())
	}

	if err := r.history.ReplaceForKey(ctx, current.JiraKey(), entries); err != nil {
		r.logger.Errorw("failed to rebuild ticket history",
			"jira_key", current.JiraKey(),
			"entries", len(entries),
			"error", err,
		)
		return 0, fmt.Errorf("failed to rebuild history for %s: %w", current.JiraKey(), err)
	}

	return len(entries), nil
}
