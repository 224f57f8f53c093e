package jira

import (
	"errors"

	"github.com/sony/gobreaker/v2"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/metrics"
	"github.com/metashield/jirasync/internal/shared/config"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const breakerName = "jira-api"

// newBreaker builds the circuit breaker guarding every remote call. It
// opens once the failure ratio reaches cfg.FailureRatio over at least
// cfg.MinRequests requests. Rejections and missing tickets are answers from
// a healthy remote and do not count as failures.
func newBreaker(cfg config.BreakerConfig, log logger.Interface) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ticket.ErrSourceRejected) ||
				errors.Is(err, ticket.ErrSourceNotFound)
		},
	})
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
