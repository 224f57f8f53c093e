package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/shared/biztime"
	"github.com/metashield/jirasync/internal/shared/config"
	"github.com/metashield/jirasync/internal/shared/goroutine"
)

const (
	realtimeJobTimeout    = 5 * time.Minute
	incrementalJobTimeout = 30 * time.Minute
	fullJobTimeout        = 6 * time.Hour

	intervalRefreshEvery   = time.Minute
	intervalRefreshTimeout = 10 * time.Second
)

// SyncJobs groups the orchestrators driven by the scheduler.
type SyncJobs struct {
	Full        usecases.FullSyncExecutor
	Incremental usecases.IncrementalSyncExecutor
	Realtime    usecases.RealtimeSyncExecutor
	Settings    syncsetting.Repository
}

// ConfiguredIntervals returns the cadence used while no interval setting is
// stored. Zero config values fall back to the seeded defaults.
func ConfiguredIntervals(cfg config.SchedulerConfig) syncsetting.Intervals {
	defaults := syncsetting.DefaultIntervals()
	return syncsetting.Intervals{
		Full:        intervalOrDefault(cfg.FullInterval, defaults.Full),
		Incremental: intervalOrDefault(cfg.IncrementalInterval, defaults.Incremental),
		Realtime:    intervalOrDefault(cfg.RealtimeInterval, defaults.Realtime),
	}
}

type syncJobDef struct {
	name      string
	tag       string
	timeout   time.Duration
	immediate bool
	interval  func(syncsetting.Intervals) time.Duration
	run       func(m *SchedulerManager, ctx context.Context, jobs SyncJobs)
}

type scheduledSyncJob struct {
	def   syncJobDef
	job   gocron.Job
	every time.Duration
}

var syncJobDefs = []syncJobDef{
	{
		name:      "sync-realtime",
		tag:       "realtime",
		timeout:   realtimeJobTimeout,
		immediate: true,
		interval:  func(iv syncsetting.Intervals) time.Duration { return iv.Realtime },
		run:       (*SchedulerManager).runRealtimeSync,
	},
	{
		name:      "sync-incremental",
		tag:       "incremental",
		timeout:   incrementalJobTimeout,
		immediate: true,
		interval:  func(iv syncsetting.Intervals) time.Duration { return iv.Incremental },
		run:       (*SchedulerManager).runIncrementalSync,
	},
	{
		name:     "sync-full",
		tag:      "full",
		timeout:  fullJobTimeout,
		interval: func(iv syncsetting.Intervals) time.Duration { return iv.Full },
		run:      (*SchedulerManager).runFullSync,
	},
}

// ========================================
// Sync Jobs (interval based, singleton)
// ========================================

// RegisterSyncJobs registers the three synchronization jobs:
// - Realtime sync, start immediately
// - Incremental sync, start immediately
// - Full sync, first run after one interval
//
// Intervals come from the stored interval settings, falling back to cfg.
// A fourth job re-reads the settings every minute and reschedules on change.
func (m *SchedulerManager) RegisterSyncJobs(jobs SyncJobs, cfg config.SchedulerConfig) error {
	fallback := ConfiguredIntervals(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), intervalRefreshTimeout)
	intervals, err := m.loadIntervals(ctx, jobs.Settings, fallback)
	cancel()
	if err != nil {
		m.logger.Warnw("failed to read interval settings, using configured intervals", "error", err)
		intervals = fallback
	}

	m.syncJobsMu.Lock()
	defer m.syncJobsMu.Unlock()

	for _, def := range syncJobDefs {
		every := def.interval(intervals)
		opts := m.jobOptions(def)
		if def.immediate {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		job, err := m.scheduler.NewJob(gocron.DurationJob(every), m.jobTask(def, jobs), opts...)
		if err != nil {
			return err
		}
		m.syncJobs = append(m.syncJobs, &scheduledSyncJob{def: def, job: job, every: every})
	}

	_, err = m.scheduler.NewJob(
		gocron.DurationJob(intervalRefreshEvery),
		gocron.NewTask(func() {
			defer goroutine.Recover(m.logger, "sync-intervals")
			ctx, cancel := context.WithTimeout(context.Background(), intervalRefreshTimeout)
			defer cancel()
			m.refreshIntervals(ctx, jobs, fallback)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("sync", "intervals"),
		gocron.WithName("sync-intervals"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered sync jobs",
		"realtime", intervals.Realtime.String(),
		"incremental", intervals.Incremental.String(),
		"full", intervals.Full.String(),
	)
	return nil
}

func (m *SchedulerManager) jobTask(def syncJobDef, jobs SyncJobs) gocron.Task {
	return gocron.NewTask(func() {
		defer goroutine.Recover(m.logger, def.name)
		ctx, cancel := context.WithTimeout(context.Background(), def.timeout)
		defer cancel()
		def.run(m, ctx, jobs)
	})
}

func (m *SchedulerManager) jobOptions(def syncJobDef) []gocron.JobOption {
	return []gocron.JobOption{
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("sync", def.tag),
		gocron.WithName(def.name),
	}
}

func (m *SchedulerManager) loadIntervals(ctx context.Context, settings syncsetting.Repository, fallback syncsetting.Intervals) (syncsetting.Intervals, error) {
	all, err := settings.GetAll(ctx)
	if err != nil {
		return fallback, err
	}
	return syncsetting.ResolveIntervals(all, fallback), nil
}

// refreshIntervals reschedules every sync job whose interval setting changed.
// An unreadable settings table keeps the current schedule.
func (m *SchedulerManager) refreshIntervals(ctx context.Context, jobs SyncJobs, fallback syncsetting.Intervals) {
	intervals, err := m.loadIntervals(ctx, jobs.Settings, fallback)
	if err != nil {
		m.logger.Warnw("failed to read interval settings, keeping schedule", "error", err)
		return
	}

	m.syncJobsMu.Lock()
	defer m.syncJobsMu.Unlock()

	for _, sj := range m.syncJobs {
		every := sj.def.interval(intervals)
		if every == sj.every {
			continue
		}

		job, err := m.scheduler.Update(sj.job.ID(), gocron.DurationJob(every), m.jobTask(sj.def, jobs), m.jobOptions(sj.def)...)
		if err != nil {
			m.logger.Errorw("failed to reschedule sync job",
				"job", sj.def.name,
				"interval", every.String(),
				"error", err,
			)
			continue
		}

		m.logger.Infow("rescheduled sync job",
			"job", sj.def.name,
			"from", sj.every.String(),
			"to", every.String(),
		)
		sj.job = job
		sj.every = every
	}
}

func (m *SchedulerManager) runRealtimeSync(ctx context.Context, jobs SyncJobs) {
	if !m.syncEnabled(ctx, jobs.Settings) {
		return
	}

	startTime := biztime.NowUTC()
	result, err := jobs.Realtime.Execute(ctx, usecases.RealtimeSyncCommand{Source: syncrun.SourceCron})
	if err != nil {
		m.logJobError("realtime", err, startTime)
		return
	}

	m.logger.Debugw("scheduled realtime sync finished",
		"run_id", result.RunID,
		"status", result.Status,
		"resolved", result.Resolved,
		"jira_unresolved", result.JiraUnresolvedCount,
		"duration", time.Since(startTime),
	)
}

func (m *SchedulerManager) runIncrementalSync(ctx context.Context, jobs SyncJobs) {
	if !m.syncEnabled(ctx, jobs.Settings) {
		return
	}

	startTime := biztime.NowUTC()
	result, err := jobs.Incremental.Execute(ctx, usecases.IncrementalSyncCommand{Source: syncrun.SourceCron})
	if err != nil {
		m.logJobError("incremental", err, startTime)
		return
	}

	m.logger.Debugw("scheduled incremental sync finished",
		"run_id", result.RunID,
		"status", result.Status,
		"processed", result.Processed,
		"duration", time.Since(startTime),
	)
}

func (m *SchedulerManager) runFullSync(ctx context.Context, jobs SyncJobs) {
	if !m.syncEnabled(ctx, jobs.Settings) {
		return
	}

	startTime := biztime.NowUTC()
	result, err := jobs.Full.Execute(ctx, usecases.FullSyncCommand{Source: syncrun.SourceCron})
	if err != nil {
		m.logJobError("full", err, startTime)
		return
	}

	m.logger.Infow("scheduled full sync finished",
		"run_id", result.RunID,
		"status", result.Status,
		"processed", result.Processed,
		"duration", time.Since(startTime),
	)
}

// syncEnabled reads the sync_enabled switch. A missing setting means
// enabled; an unreadable one skips the tick.
func (m *SchedulerManager) syncEnabled(ctx context.Context, settings syncsetting.Repository) bool {
	setting, err := settings.Get(ctx, syncsetting.KeySyncEnabled)
	if errors.Is(err, syncsetting.ErrSettingNotFound) {
		return true
	}
	if err != nil {
		m.logger.Warnw("failed to read sync_enabled, skipping tick", "error", err)
		return false
	}

	enabled, err := setting.GetBoolValue()
	if err != nil {
		m.logger.Warnw("invalid sync_enabled value, skipping tick",
			"value", setting.Value(),
			"error", err,
		)
		return false
	}
	if !enabled {
		m.logger.Debugw("scheduled sync disabled by setting")
	}
	return enabled
}

func (m *SchedulerManager) logJobError(syncType string, err error, startTime time.Time) {
	// Don't log error if context was cancelled (graceful shutdown)
	if errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Errorw("scheduled sync failed",
		"sync_type", syncType,
		"error", err,
		"duration", time.Since(startTime),
	)
}

func intervalOrDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
