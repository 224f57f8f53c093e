package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/db"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// WriteOptions controls how a remote record is persisted.
type WriteOptions struct {
	Source ticket.ChangeSource

	// DiffBeforeWrite reads the stored row and diffs it against the incoming
	// record before the upsert instead of relying on the upsert's snapshot.
	DiffBeforeWrite bool

	// ImportChangelog replaces stored history with the remote changelog when
	// the record carries one.
	ImportChangelog bool
}

// WriteOutcome reports what happened to one record. HistoryErr is set when
// the ticket was written but its history was not.
type WriteOutcome struct {
	Ticket       *ticket.Ticket
	Created      bool
	Updated      bool
	Stale        bool
	Changes      []ticket.FieldChange
	HistoryCount int
	HistoryErr   error
}

// TicketWriter persists mapped remote records and their history.
type TicketWriter struct {
	tickets  ticket.Repository
	recorder *HistoryRecorder
	tx       db.Transactor
	now      func() time.Time
	logger   logger.Interface
}

func NewTicketWriter(tickets ticket.Repository, recorder *HistoryRecorder, logger logger.Interface) *TicketWriter {
	return &TicketWriter{
		tickets:  tickets,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// WithTransactor makes the read behind DiffBeforeWrite and the upsert share
// one transaction, so the recorded diff is against the row actually replaced.
func (w *TicketWriter) WithTransactor(tx db.Transactor) *TicketWriter {
	w.tx = tx
	return w
}

// Write upserts one remote record. A returned error means the ticket itself
// was not stored; history failures are reported through the outcome.
func (w *TicketWriter) Write(ctx context.Context, remote ticket.RemoteTicket, opts WriteOptions) (*WriteOutcome, error) {
	if remote.Err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", remote.Key, remote.Err)
	}
	if remote.Ticket == nil {
		return nil, fmt.Errorf("failed to map %s: %w", remote.Key, ticket.ErrMissingKey)
	}

	var (
		preChanges []ticket.FieldChange
		result     *ticket.UpsertResult
	)
	write := func(ctx context.Context) error {
		if opts.DiffBeforeWrite {
			stored, err := w.tickets.GetByKey(ctx, remote.Ticket.JiraKey())
			switch {
			case err == nil:
				preChanges = ticket.Diff(stored, remote.Ticket)
			case errors.Is(err, ticket.ErrTicketNotFound):
			default:
				return err
			}
		}

		var err error
		result, err = w.tickets.Upsert(ctx, remote.Ticket)
		return err
	}

	var err error
	if opts.DiffBeforeWrite && w.tx != nil {
		err = w.tx.RunInTransaction(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := &WriteOutcome{
		Ticket:  result.Current,
		Created: result.IsNew,
		Updated: !result.IsNew && !result.Stale,
		Stale:   result.Stale,
	}
	if out.Stale {
		return out, nil
	}

	if opts.ImportChangelog && len(remote.Changelog) > 0 {
		out.HistoryCount, out.HistoryErr = w.recorder.Rebuild(ctx, result.Current, remote.Changelog)
		return out, nil
	}
	if result.IsNew {
		return out, nil
	}

	out.Changes = preChanges
	if !opts.DiffBeforeWrite {
		out.Changes = ticket.Diff(result.Previous, result.Current)
	}
	out.HistoryCount, out.HistoryErr = w.recorder.Record(ctx, result.Current, out.Changes, opts.Source, w.now())
	return out, nil
}

// ApplyStatus copies the status fields of remote onto the stored ticket
// prev and records the resulting changes.
func (w *TicketWriter) ApplyStatus(ctx context.Context, prev, remote *ticket.Ticket, source ticket.ChangeSource) (*WriteOutcome, error) {
	attrs := remote.Attributes()
	now := w.now()

	status := attrs.Status
	if status == "" {
		status = prev.Status()
	}

	updated, err := w.tickets.ApplyStatusUpdate(ctx, prev.JiraKey(), ticket.StatusPatch{
		Status:        status,
		Resolution:    attrs.Resolution,
		ResolvedAt:    attrs.ResolvedAt,
		AssigneeName:  attrs.AssigneeName,
		AssigneeEmail: attrs.AssigneeEmail,
		UpdatedAt:     attrs.UpdatedAt,
		SyncedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	out := &WriteOutcome{
		Ticket:  updated,
		Updated: true,
		Changes: ticket.Diff(prev, updated),
	}
	out.HistoryCount, out.HistoryErr = w.recorder.Record(ctx, updated, out.Changes, source, now)
	return out, nil
}
