package ticket

import "errors"

var (
	// ErrTicketNotFound is returned when no local ticket exists for a key
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrMissingKey is returned when a remote record carries no external key
	ErrMissingKey = errors.New("ticket key is required")

	// ErrVersionConflict is returned when a concurrent writer kept winning the
	// sync_version compare-and-swap
	ErrVersionConflict = errors.New("ticket was modified concurrently")

	// ErrSourceTimeout is returned when a remote call exceeded its deadline
	ErrSourceTimeout = errors.New("remote tracker request timed out")

	// ErrSourceUnavailable covers transport failures, 5xx responses and an
	// open circuit breaker. These are retryable.
	ErrSourceUnavailable = errors.New("remote tracker unavailable")

	// ErrSourceRejected covers 4xx responses. These are never retried.
	ErrSourceRejected = errors.New("remote tracker rejected the request")

	// ErrSourceNotFound is returned when the remote has no ticket for a key
	ErrSourceNotFound = errors.New("ticket not found in remote tracker")
)

// IsRetryable reports whether a source error may succeed on another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSourceTimeout) || errors.Is(err, ErrSourceUnavailable)
}
