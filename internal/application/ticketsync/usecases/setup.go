package usecases

import (
	"context"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const (
	ActionRunFullSync       = "run_full_sync"
	ActionRelyOnIncremental = "rely_on_incremental"
)

type SetupCommand struct {
	Source syncrun.Source
}

type SetupResult struct {
	RunID             uint              `json:"runId"`
	SeededSettings    []string          `json:"seededSettings"`
	Settings          map[string]string `json:"settings"`
	TicketCount       int64             `json:"ticketCount"`
	RecommendedAction string            `json:"recommendedAction"`
}

// SetupUseCase seeds the default settings. Running it again changes nothing
// except for the ledger row it writes.
type SetupUseCase struct {
	tickets  ticket.Repository
	settings syncsetting.Repository
	ledger   *services.Ledger
	logger   logger.Interface
}

func NewSetupUseCase(
	tickets ticket.Repository,
	settings syncsetting.Repository,
	ledger *services.Ledger,
	logger logger.Interface,
) *SetupUseCase {
	return &SetupUseCase{
		tickets:  tickets,
		settings: settings,
		ledger:   ledger,
		logger:   logger,
	}
}

func (uc *SetupUseCase) Execute(ctx context.Context, cmd SetupCommand) (*SetupResult, error) {
	if cmd.Source == "" {
		cmd.Source = syncrun.SourceAPI
	}
	uc.logger.Infow("executing setup use case", "sync_source", cmd.Source)

	seeded := make([]string, 0)
	for _, s := range syncsetting.Defaults() {
		inserted, err := uc.settings.InsertIfAbsent(ctx, s)
		if err != nil {
			uc.logger.Errorw("failed to seed sync setting", "setting_key", s.Key(), "error", err)
			return nil, errors.NewInternalError("failed to seed sync settings")
		}
		if inserted {
			seeded = append(seeded, s.Key())
		}
	}

	count, err := uc.tickets.Count(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count tickets", "error", err)
		return nil, errors.NewInternalError("failed to count tickets")
	}

	all, err := uc.settings.GetAll(ctx)
	if err != nil {
		uc.logger.Errorw("failed to read sync settings", "error", err)
		return nil, errors.NewInternalError("failed to read sync settings")
	}
	values := make(map[string]string, len(all))
	for _, s := range all {
		values[s.Key()] = s.Value()
	}

	run, err := uc.ledger.Open(ctx, syncrun.TypeSetup, cmd.Source)
	if err != nil {
		return nil, errors.NewInternalError("failed to record setup run", err.Error())
	}
	run.SetDetail("seeded_settings", len(seeded))
	run.SetDetail("ticket_count", count)
	if err := uc.ledger.Close(ctx, run, syncrun.StatusCompleted, syncrun.Counters{}, ""); err != nil {
		return nil, errors.NewInternalError("failed to record setup run", err.Error())
	}

	action := ActionRelyOnIncremental
	if count == 0 {
		action = ActionRunFullSync
	}

	uc.logger.Infow("setup completed",
		"seeded_settings", len(seeded),
		"ticket_count", count,
		"recommended_action", action,
	)

	return &SetupResult{
		RunID:             run.ID(),
		SeededSettings:    seeded,
		Settings:          values,
		TicketCount:       count,
		RecommendedAction: action,
	}, nil
}
