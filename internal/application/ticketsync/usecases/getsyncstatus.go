package usecases

import (
	"context"
	"time"

	"github.com/metashield/jirasync/internal/application/ticketsync/dto"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/biztime"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const recentRunsLimit = 5

type GetSyncStatusQuery struct{}

type NextSyncTimes struct {
	Full        *time.Time `json:"full"`
	Incremental *time.Time `json:"incremental"`
	Realtime    *time.Time `json:"realtime"`
}

type SyncStatusResult struct {
	TotalTickets   int64                      `json:"totalTickets"`
	TodaySynced    int64                      `json:"todaySynced"`
	SyncEnabled    bool                       `json:"syncEnabled"`
	RunningSyncs   []dto.RunningSyncDTO       `json:"runningSyncs"`
	LastSuccessful map[string]*dto.SyncRunDTO `json:"lastSuccessful"`
	RecentRuns     []*dto.SyncRunDTO          `json:"recentRuns"`
	NextEstimated  NextSyncTimes              `json:"nextEstimated"`
	Settings       map[string]string          `json:"settings"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
}

// GetSyncStatusUseCase aggregates the status snapshot. It has no side effects.
type GetSyncStatusUseCase struct {
	tickets   ticket.Repository
	runs      syncrun.Repository
	settings  syncsetting.Repository
	intervals syncsetting.Intervals
	now       func() time.Time
	logger    logger.Interface
}

func NewGetSyncStatusUseCase(
	tickets ticket.Repository,
	runs syncrun.Repository,
	settings syncsetting.Repository,
	logger logger.Interface,
) *GetSyncStatusUseCase {
	return &GetSyncStatusUseCase{
		tickets:   tickets,
		runs:      runs,
		settings:  settings,
		intervals: syncsetting.DefaultIntervals(),
		now:       biztime.NowUTC,
		logger:    logger,
	}
}

// WithIntervalFallback sets the cadence assumed when no interval setting is
// stored. Pass the scheduler's configured intervals so estimates match it.
func (uc *GetSyncStatusUseCase) WithIntervalFallback(iv syncsetting.Intervals) *GetSyncStatusUseCase {
	cp := *uc
	cp.intervals = iv
	return &cp
}

func (uc *GetSyncStatusUseCase) Execute(ctx context.Context, _ GetSyncStatusQuery) (*SyncStatusResult, error) {
	now := uc.now()

	total, err := uc.tickets.Count(ctx)
	if err != nil {
		uc.logger.Errorw("failed to count tickets", "error", err)
		return nil, errors.NewInternalError("failed to load sync status")
	}

	today, err := uc.tickets.CountSyncedSince(ctx, biztime.StartOfDayUTC(now))
	if err != nil {
		uc.logger.Errorw("failed to count tickets synced today", "error", err)
		return nil, errors.NewInternalError("failed to load sync status")
	}

	settings, err := uc.settings.GetAll(ctx)
	if err != nil {
		uc.logger.Errorw("failed to read sync settings", "error", err)
		return nil, errors.NewInternalError("failed to load sync status")
	}
	byKey := make(map[string]*syncsetting.Setting, len(settings))
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		byKey[s.Key()] = s
		values[s.Key()] = s.Value()
	}

	running, err := uc.runs.ListRunning(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list running syncs", "error", err)
		return nil, errors.NewInternalError("failed to load sync status")
	}
	runningDTOs := make([]dto.RunningSyncDTO, 0, len(running))
	for _, r := range running {
		runningDTOs = append(runningDTOs, dto.ToRunningSyncDTO(r, now))
	}

	intervals := syncsetting.ResolveIntervals(settings, uc.intervals)
	lastSuccessful := make(map[string]*dto.SyncRunDTO, 3)
	var next NextSyncTimes
	for _, tc := range []struct {
		syncType syncrun.Type
		interval time.Duration
		target   **time.Time
	}{
		{syncrun.TypeFull, intervals.Full, &next.Full},
		{syncrun.TypeIncremental, intervals.Incremental, &next.Incremental},
		{syncrun.TypeRealtime, intervals.Realtime, &next.Realtime},
	} {
		last, err := uc.runs.LastSuccessful(ctx, tc.syncType)
		if err != nil {
			uc.logger.Errorw("failed to get last successful sync", "sync_type", tc.syncType, "error", err)
			return nil, errors.NewInternalError("failed to load sync status")
		}
		if last == nil {
			continue
		}

		lastSuccessful[string(tc.syncType)] = dto.ToSyncRunDTO(last)

		at := last.StartedAt()
		if completed := last.CompletedAt(); completed != nil {
			at = *completed
		}
		nextAt := at.Add(tc.interval)
		*tc.target = &nextAt
	}

	recent, err := uc.runs.ListRecent(ctx, recentRunsLimit)
	if err != nil {
		uc.logger.Errorw("failed to list recent syncs", "error", err)
		return nil, errors.NewInternalError("failed to load sync status")
	}

	return &SyncStatusResult{
		TotalTickets:   total,
		TodaySynced:    today,
		SyncEnabled:    syncEnabled(byKey),
		RunningSyncs:   runningDTOs,
		LastSuccessful: lastSuccessful,
		RecentRuns:     dto.ToSyncRunDTOList(recent),
		NextEstimated:  next,
		Settings:       values,
		GeneratedAt:    now,
	}, nil
}

// syncEnabled defaults to true until setup has seeded the flag.
func syncEnabled(byKey map[string]*syncsetting.Setting) bool {
	s, ok := byKey[syncsetting.KeySyncEnabled]
	if !ok {
		return true
	}
	enabled, err := s.GetBoolValue()
	if err != nil {
		return true
	}
	return enabled
}
