package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/andygrunwald/go-jira"
	"github.com/sony/gobreaker/v2"

	"github.com/metashield/jirasync/internal/domain/ticket"
)

// classify maps a go-jira call result onto the ticket source errors.
func classify(ctx context.Context, resp *jira.Response, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ticket.ErrSourceTimeout, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker: %v", ticket.ErrSourceUnavailable, err)
	}
	if resp != nil && resp.Response != nil {
		switch code := resp.StatusCode; {
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", ticket.ErrSourceNotFound, err)
		case code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: status %d: %v", ticket.ErrSourceUnavailable, code, err)
		case code >= http.StatusBadRequest:
			return fmt.Errorf("%w: status %d: %v", ticket.ErrSourceRejected, code, err)
		}
	}
	return fmt.Errorf("%w: %v", ticket.ErrSourceUnavailable, err)
}

func isSourceError(err error) bool {
	return errors.Is(err, ticket.ErrSourceTimeout) ||
		errors.Is(err, ticket.ErrSourceUnavailable) ||
		errors.Is(err, ticket.ErrSourceRejected) ||
		errors.Is(err, ticket.ErrSourceNotFound)
}

// outcome labels a classified error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ticket.ErrSourceTimeout):
		return "timeout"
	case errors.Is(err, ticket.ErrSourceNotFound):
		return "not_found"
	case errors.Is(err, ticket.ErrSourceRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}
