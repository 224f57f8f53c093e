package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/config"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const (
	incrementalPageSize   = 100
	incrementalPauseEvery = 3
	incrementalPause      = 500 * time.Millisecond
	defaultLookback       = 24 * time.Hour
)

type IncrementalSyncCommand struct {
	Source syncrun.Source
}

type IncrementalSyncUseCase struct {
	source   ticket.Source
	writer   *services.TicketWriter
	ledger   *services.Ledger
	settings syncsetting.Repository
	defaults config.IncrementalSyncConfig
	sleep    SleepFunc
	logger   logger.Interface
}

func NewIncrementalSyncUseCase(
	source ticket.Source,
	writer *services.TicketWriter,
	ledger *services.Ledger,
	settings syncsetting.Repository,
	defaults config.IncrementalSyncConfig,
	logger logger.Interface,
) *IncrementalSyncUseCase {
	return &IncrementalSyncUseCase{
		source:   source,
		writer:   writer,
		ledger:   ledger,
		settings: settings,
		defaults: defaults,
		sleep:    contextSleep,
		logger:   logger,
	}
}

func (uc *IncrementalSyncUseCase) Execute(ctx context.Context, cmd IncrementalSyncCommand) (*SyncResult, error) {
	if cmd.Source == "" {
		cmd.Source = syncrun.SourceAPI
	}
	if !cmd.Source.IsValid() {
		return nil, errors.NewValidationError("invalid sync source")
	}

	run, err := uc.ledger.Open(ctx, syncrun.TypeIncremental, cmd.Source)
	if err != nil {
		return nil, errors.NewInternalError("failed to start incremental sync", err.Error())
	}

	startedAt := run.StartedAt()
	checkpoint := uc.checkpoint(ctx, startedAt)
	run.SetWindow(checkpoint, startedAt)

	uc.logger.Infow("executing incremental sync use case",
		"run_id", run.ID(),
		"checkpoint", checkpoint,
	)

	records, err := uc.source.SearchAll(ctx, ticket.SearchRequest{
		Query: ticket.SearchQuery{
			UpdatedFrom: &checkpoint,
			OrderBy:     ticket.OrderByUpdated,
			Ascending:   true,
		},
		PageSize:   incrementalPageSize,
		MaxResults: uc.maxRecords(ctx),
	})
	if err != nil {
		var counters syncrun.Counters
		errMsg := fmt.Sprintf("failed to fetch updated tickets: %v", err)
		if closeErr := uc.ledger.Close(ctx, run, syncrun.StatusFailed, counters, errMsg); closeErr != nil {
			return nil, errors.NewInternalError("failed to finalize incremental sync", closeErr.Error())
		}
		return newSyncResult(run, counters, 0), nil
	}

	opts := services.WriteOptions{
		Source:          ticket.ChangeSourceIncremental,
		DiffBeforeWrite: true,
	}

	var (
		counters        syncrun.Counters
		historyFailures int
		errMsg          string
		interrupted     bool
	)

	batchSize := max(uc.defaults.BatchSize, 1)
	for i, batch := 0, 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		out := writeBatch(ctx, uc.writer, records[i:end], opts, uc.logger)
		counters.Add(out.counters)
		historyFailures += out.historyFailures
		uc.ledger.Progress(ctx, run, counters)
		if out.interrupted {
			errMsg = fmt.Sprintf("interrupted: %v", ctx.Err())
			interrupted = true
			break
		}

		batch++
		if end < len(records) && batch%incrementalPauseEvery == 0 {
			if err := uc.sleep(ctx, incrementalPause); err != nil {
				errMsg = fmt.Sprintf("interrupted: %v", err)
				interrupted = true
				break
			}
		}
	}

	status := syncrun.ClassifyTolerantRun(counters)
	if interrupted {
		status = syncrun.StatusFailed
	}
	if err := uc.ledger.Close(ctx, run, status, counters, errMsg); err != nil {
		return nil, errors.NewInternalError("failed to finalize incremental sync", err.Error())
	}

	// An interrupted run left records unwritten, so the window stays open.
	if !interrupted {
		if err := uc.settings.SetTime(ctx, syncsetting.KeyLastIncrementalSync, startedAt); err != nil {
			uc.logger.Errorw("failed to store incremental sync checkpoint", "run_id", run.ID(), "error", err)
		}
	}

	return newSyncResult(run, counters, historyFailures), nil
}

// checkpoint returns the stored last incremental sync time, or the default
// lookback before now when unset or unreadable.
func (uc *IncrementalSyncUseCase) checkpoint(ctx context.Context, now time.Time) time.Time {
	lookback := uc.defaults.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}
	fallback := now.Add(-lookback)

	s, err := uc.settings.Get(ctx, syncsetting.KeyLastIncrementalSync)
	if err != nil {
		if !stderrors.Is(err, syncsetting.ErrSettingNotFound) {
			uc.logger.Warnw("failed to read incremental sync checkpoint", "error", err)
		}
		return fallback
	}

	t, err := s.GetTimeValue()
	if err != nil || t.IsZero() {
		uc.logger.Warnw("ignoring invalid incremental sync checkpoint", "value", s.Value())
		return fallback
	}
	return t
}

// maxRecords prefers the max_tickets_per_sync setting over the configured cap.
func (uc *IncrementalSyncUseCase) maxRecords(ctx context.Context) int {
	limit := uc.defaults.MaxRecords
	if s, err := uc.settings.Get(ctx, syncsetting.KeyMaxTicketsPerSync); err == nil {
		if v, err := s.GetIntValue(); err == nil && v > 0 {
			limit = v
		}
	}
	return limit
}
