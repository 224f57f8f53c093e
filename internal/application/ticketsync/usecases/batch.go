package usecases

import (
	"context"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/logger"
)

type batchOutcome struct {
	counters        syncrun.Counters
	historyFailures int
	interrupted     bool
}

// writeBatch persists records one by one. A record that cannot be mapped or
// stored is counted as failed and the loop moves on. Once ctx is done the
// remaining records are left uncounted.
func writeBatch(ctx context.Context, writer *services.TicketWriter, records []ticket.RemoteTicket, opts services.WriteOptions, log logger.Interface) batchOutcome {
	var out batchOutcome

	for _, rec := range records {
		if ctx.Err() != nil {
			out.interrupted = true
			break
		}

		res, err := writer.Write(ctx, rec, opts)
		if err != nil && ctx.Err() != nil {
			out.interrupted = true
			break
		}
		out.counters.Processed++
		if err != nil {
			out.counters.Failed++
			log.Warnw("failed to sync ticket",
				"jira_key", rec.Key,
				"change_source", opts.Source,
				"error", err,
			)
			continue
		}

		switch {
		case res.Created:
			out.counters.Created++
		case res.Updated:
			out.counters.Updated++
		case res.Stale:
			log.Debugw("skipped stale ticket", "jira_key", rec.Key)
		}

		if res.HistoryErr != nil {
			out.historyFailures++
		}
	}

	return out
}
