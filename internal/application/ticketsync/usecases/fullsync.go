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
	fullSyncPauseEvery = 5
	fullSyncPause      = time.Second
)

type FullSyncCommand struct {
	BatchSize    int      `json:"batchSize" binding:"omitempty,min=1,max=100"`
	MaxResults   int      `json:"maxResults" binding:"omitempty,min=1,max=50000"`
	DaysLookback int      `json:"daysLookback" binding:"omitempty,min=1,max=3650"`
	Projects     []string `json:"projects"`

	Source syncrun.Source `json:"-"`
}

type FullSyncUseCase struct {
	source   ticket.Source
	writer   *services.TicketWriter
	ledger   *services.Ledger
	settings syncsetting.Repository
	defaults config.FullSyncConfig
	sleep    SleepFunc
	logger   logger.Interface
}

func NewFullSyncUseCase(
	source ticket.Source,
	writer *services.TicketWriter,
	ledger *services.Ledger,
	settings syncsetting.Repository,
	defaults config.FullSyncConfig,
	logger logger.Interface,
) *FullSyncUseCase {
	return &FullSyncUseCase{
		source:   source,
		writer:   writer,
		ledger:   ledger,
		settings: settings,
		defaults: defaults,
		sleep:    contextSleep,
		logger:   logger,
	}
}

func (uc *FullSyncUseCase) Execute(ctx context.Context, cmd FullSyncCommand) (*SyncResult, error) {
	cmd = uc.withDefaults(cmd)
	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	uc.logger.Infow("executing full sync use case",
		"batch_size", cmd.BatchSize,
		"max_results", cmd.MaxResults,
		"days_lookback", cmd.DaysLookback,
		"projects", cmd.Projects,
	)

	run, err := uc.ledger.Open(ctx, syncrun.TypeFull, cmd.Source)
	if err != nil {
		return nil, errors.NewInternalError("failed to start full sync", err.Error())
	}

	now := uc.ledger.Now()
	from := now.AddDate(0, 0, -cmd.DaysLookback)
	to := now
	run.SetWindow(from, to)

	query := ticket.SearchQuery{
		Projects:    cmd.Projects,
		CreatedFrom: &from,
		CreatedTo:   &to,
		OrderBy:     ticket.OrderByCreated,
	}
	opts := services.WriteOptions{
		Source:          ticket.ChangeSourceFullSync,
		ImportChangelog: true,
	}

	var (
		counters        syncrun.Counters
		historyFailures int
		errMsg          string
		batches         int
		aborted         bool
	)

	for startAt := 0; startAt < cmd.MaxResults; startAt += cmd.BatchSize {
		if err := ctx.Err(); err != nil {
			errMsg = fmt.Sprintf("interrupted: %v", err)
			aborted = true
			break
		}

		pageSize := min(cmd.BatchSize, cmd.MaxResults-startAt)

		page, err := uc.source.Search(ctx, ticket.SearchRequest{
			Query:         query,
			StartAt:       startAt,
			PageSize:      pageSize,
			WithChangelog: true,
		})
		batches++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				errMsg = fmt.Sprintf("interrupted: %v", ctxErr)
				aborted = true
				break
			}
			if stderrors.Is(err, ticket.ErrSourceRejected) {
				// Bad credentials or invalid JQL repeat on every page.
				uc.logger.Errorw("full sync aborted by remote rejection",
					"run_id", run.ID(),
					"start_at", startAt,
					"error", err,
				)
				errMsg = fmt.Sprintf("batch at %d: %v", startAt, err)
				aborted = true
				break
			}
			uc.logger.Warnw("full sync batch fetch failed",
				"run_id", run.ID(),
				"start_at", startAt,
				"error", err,
			)
			counters.Failed += cmd.BatchSize
			errMsg = fmt.Sprintf("batch at %d: %v", startAt, err)
			uc.ledger.Progress(ctx, run, counters)
			continue
		}

		if len(page.Tickets) == 0 {
			break
		}

		out := writeBatch(ctx, uc.writer, page.Tickets, opts, uc.logger)
		counters.Add(out.counters)
		historyFailures += out.historyFailures
		uc.ledger.Progress(ctx, run, counters)
		if out.interrupted {
			errMsg = fmt.Sprintf("interrupted: %v", ctx.Err())
			aborted = true
			break
		}

		if page.Total > 0 && startAt+len(page.Tickets) >= page.Total {
			break
		}

		if batches%fullSyncPauseEvery == 0 {
			if err := uc.sleep(ctx, fullSyncPause); err != nil {
				errMsg = fmt.Sprintf("interrupted: %v", err)
				aborted = true
				break
			}
		}
	}

	status := syncrun.ClassifyBatchRun(counters)
	if aborted {
		status = syncrun.StatusFailed
	}
	if status == syncrun.StatusCompleted {
		errMsg = ""
	}

	if err := uc.ledger.Close(ctx, run, status, counters, errMsg); err != nil {
		return nil, errors.NewInternalError("failed to finalize full sync", err.Error())
	}

	if status.IsSuccessful() {
		if err := uc.settings.SetTime(ctx, syncsetting.KeyLastFullSync, uc.ledger.Now()); err != nil {
			uc.logger.Errorw("failed to store full sync checkpoint", "run_id", run.ID(), "error", err)
		}
	}

	return newSyncResult(run, counters, historyFailures), nil
}

func (uc *FullSyncUseCase) withDefaults(cmd FullSyncCommand) FullSyncCommand {
	if cmd.BatchSize == 0 {
		cmd.BatchSize = uc.defaults.BatchSize
	}
	if cmd.MaxResults == 0 {
		cmd.MaxResults = uc.defaults.MaxResults
	}
	if cmd.DaysLookback == 0 {
		cmd.DaysLookback = uc.defaults.DaysLookback
	}
	if cmd.Source == "" {
		cmd.Source = syncrun.SourceAPI
	}
	return cmd
}

func (uc *FullSyncUseCase) validateCommand(cmd FullSyncCommand) error {
	if cmd.BatchSize < 1 || cmd.BatchSize > ticket.MaxPageSize {
		return errors.NewValidationError(fmt.Sprintf("batchSize must be between 1 and %d", ticket.MaxPageSize))
	}
	if cmd.MaxResults < 1 {
		return errors.NewValidationError("maxResults must be positive")
	}
	if cmd.DaysLookback < 1 {
		return errors.NewValidationError("daysLookback must be positive")
	}
	if !cmd.Source.IsValid() {
		return errors.NewValidationError("invalid sync source")
	}
	return nil
}
