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
	realtimePageSize      = 100
	defaultRealtimeWindow = 24 * time.Hour
	defaultRefetchTimeout = 5 * time.Second

	detailJiraUnresolved = "jira_unresolved_count"
	detailDBUnresolved   = "db_unresolved_count"
)

// realtimeFields is the reduced projection fetched by realtime runs.
var realtimeFields = []string{
	"key", "id", "updated", "created", "summary", "status", "priority",
	"assignee", "project", "resolution", "resolutiondate", "issuetype",
}

type RealtimeSyncCommand struct {
	Source syncrun.Source
}

type RealtimeSyncResult struct {
	SyncResult
	JiraUnresolvedCount int `json:"jiraUnresolvedCount"`
	DBUnresolvedCount   int `json:"dbUnresolvedCount"`
}

type RealtimeSyncUseCase struct {
	source   ticket.Source
	tickets  ticket.Repository
	writer   *services.TicketWriter
	ledger   *services.Ledger
	settings syncsetting.Repository
	projects []string
	defaults config.RealtimeSyncConfig
	logger   logger.Interface
}

// NewRealtimeSyncUseCase expects source to carry the realtime retry policy.
func NewRealtimeSyncUseCase(
	source ticket.Source,
	tickets ticket.Repository,
	writer *services.TicketWriter,
	ledger *services.Ledger,
	settings syncsetting.Repository,
	projects []string,
	defaults config.RealtimeSyncConfig,
	logger logger.Interface,
) *RealtimeSyncUseCase {
	return &RealtimeSyncUseCase{
		source:   source,
		tickets:  tickets,
		writer:   writer,
		ledger:   ledger,
		settings: settings,
		projects: projects,
		defaults: defaults,
		logger:   logger,
	}
}

func (uc *RealtimeSyncUseCase) Execute(ctx context.Context, cmd RealtimeSyncCommand) (*RealtimeSyncResult, error) {
	if cmd.Source == "" {
		cmd.Source = syncrun.SourceAPI
	}
	if !cmd.Source.IsValid() {
		return nil, errors.NewValidationError("invalid sync source")
	}

	run, err := uc.ledger.Open(ctx, syncrun.TypeRealtime, cmd.Source)
	if err != nil {
		return nil, errors.NewInternalError("failed to start realtime sync", err.Error())
	}

	window := uc.defaults.Window
	if window <= 0 {
		window = defaultRealtimeWindow
	}
	run.SetWindow(run.StartedAt().Add(-window), run.StartedAt())

	remote, err := uc.source.SearchAll(ctx, ticket.SearchRequest{
		Query: ticket.SearchQuery{
			Projects:        uc.projects,
			ExcludeStatuses: ticket.ClosedStatuses(),
			CreatedWithin:   window,
			OrderBy:         ticket.OrderByUpdated,
		},
		PageSize:   realtimePageSize,
		MaxResults: uc.defaults.MaxResults,
		Fields:     realtimeFields,
	})
	if err != nil {
		uc.logger.Errorw("realtime sync could not reach jira", "run_id", run.ID(), "error", err)
		return uc.fail(ctx, run, fmt.Sprintf("jira_api_failure: %v", err), 0)
	}

	local, err := uc.tickets.ListOpen(ctx, ticket.ClosedStatuses())
	if err != nil {
		uc.logger.Errorw("realtime sync could not list open tickets", "run_id", run.ID(), "error", err)
		return uc.fail(ctx, run, fmt.Sprintf("database_failure: %v", err), len(remote))
	}

	run.SetDetail(detailJiraUnresolved, len(remote))
	run.SetDetail(detailDBUnresolved, len(local))

	uc.logger.Infow("executing realtime sync use case",
		"run_id", run.ID(),
		"jira_unresolved", len(remote),
		"db_unresolved", len(local),
	)

	localByKey := make(map[string]*ticket.Ticket, len(local))
	for _, t := range local {
		localByKey[t.JiraKey()] = t
	}
	remoteKeys := make(map[string]struct{}, len(remote))
	for _, rec := range remote {
		remoteKeys[rec.Key] = struct{}{}
	}

	var (
		counters        syncrun.Counters
		historyFailures int
	)
	track := func(out *services.WriteOutcome) {
		if out.HistoryErr != nil {
			historyFailures++
		}
	}

	// Locally open tickets that dropped out of the remote open set are
	// re-fetched one by one to pick up their closing status.
	for _, t := range local {
		if _, ok := remoteKeys[t.JiraKey()]; ok {
			continue
		}
		counters.Processed++

		resolved, out := uc.reconcile(ctx, t)
		if out != nil {
			track(out)
		}
		if resolved {
			counters.Resolved++
		}
	}

	for _, rec := range remote {
		if rec.Err != nil || rec.Ticket == nil {
			counters.Processed++
			counters.Failed++
			uc.logger.Warnw("failed to map realtime ticket", "jira_key", rec.Key, "error", rec.Err)
			continue
		}

		stored, ok := localByKey[rec.Key]
		if !ok {
			stored, err = uc.tickets.GetByKey(ctx, rec.Key)
			if err != nil && !stderrors.Is(err, ticket.ErrTicketNotFound) {
				counters.Processed++
				counters.Failed++
				uc.logger.Warnw("failed to load ticket", "jira_key", rec.Key, "error", err)
				continue
			}
		}

		if stored == nil {
			counters.Processed++
			out, err := uc.writer.Write(ctx, rec, services.WriteOptions{Source: ticket.ChangeSourceRealtime})
			if err != nil {
				counters.Failed++
				uc.logger.Warnw("failed to insert realtime ticket", "jira_key", rec.Key, "error", err)
				continue
			}
			if out.Created {
				counters.Created++
			}
			continue
		}

		if !rec.Ticket.IsNewerThan(stored) {
			continue
		}

		counters.Processed++
		out, err := uc.writer.ApplyStatus(ctx, stored, rec.Ticket, ticket.ChangeSourceRealtime)
		if err != nil {
			counters.Failed++
			uc.logger.Warnw("failed to update realtime ticket", "jira_key", rec.Key, "error", err)
			continue
		}
		counters.Updated++
		track(out)
	}

	status := syncrun.ClassifyTolerantRun(counters)
	if err := uc.ledger.Close(ctx, run, status, counters, ""); err != nil {
		return nil, errors.NewInternalError("failed to finalize realtime sync", err.Error())
	}

	if err := uc.settings.SetTime(ctx, syncsetting.KeyLastRealtimeSync, uc.ledger.Now()); err != nil {
		uc.logger.Errorw("failed to store realtime sync checkpoint", "run_id", run.ID(), "error", err)
	}

	return &RealtimeSyncResult{
		SyncResult:          *newSyncResult(run, counters, historyFailures),
		JiraUnresolvedCount: len(remote),
		DBUnresolvedCount:   len(local),
	}, nil
}

// reconcile re-fetches t and applies its remote status. It reports whether
// the ticket is now closed. An unreachable remote leaves t untouched.
func (uc *RealtimeSyncUseCase) reconcile(ctx context.Context, t *ticket.Ticket) (bool, *services.WriteOutcome) {
	timeout := uc.defaults.RefetchTimeout
	if timeout <= 0 {
		timeout = defaultRefetchTimeout
	}

	rec, err := uc.source.Get(ctx, t.JiraKey(), ticket.FetchOptions{
		Fields:  realtimeFields,
		Timeout: timeout,
	})
	if err != nil {
		uc.logger.Warnw("failed to re-fetch ticket missing from open set",
			"jira_key", t.JiraKey(),
			"error", err,
		)
		return false, nil
	}
	if rec.Err != nil || rec.Ticket == nil {
		uc.logger.Warnw("failed to map re-fetched ticket", "jira_key", t.JiraKey(), "error", rec.Err)
		return false, nil
	}

	out, err := uc.writer.ApplyStatus(ctx, t, rec.Ticket, ticket.ChangeSourceRealtime)
	if err != nil {
		uc.logger.Warnw("failed to apply remote status", "jira_key", t.JiraKey(), "error", err)
		return false, nil
	}

	closed := !out.Ticket.IsOpen()
	if closed {
		uc.logger.Infow("ticket resolved remotely",
			"jira_key", t.JiraKey(),
			"status", out.Ticket.Status(),
		)
	}
	return closed, out
}

// fail closes run as failed. The caller still receives a result.
func (uc *RealtimeSyncUseCase) fail(ctx context.Context, run *syncrun.SyncRun, msg string, remoteCount int) (*RealtimeSyncResult, error) {
	var counters syncrun.Counters
	if err := uc.ledger.Close(ctx, run, syncrun.StatusFailed, counters, msg); err != nil {
		return nil, errors.NewInternalError("failed to finalize realtime sync", err.Error())
	}

	return &RealtimeSyncResult{
		SyncResult:          *newSyncResult(run, counters, 0),
		JiraUnresolvedCount: remoteCount,
	}, nil
}
