package ticket

import (
	"context"
	"time"
)

// MaxPageSize is the largest page the remote search accepts.
const MaxPageSize = 100

// OrderField selects the remote timestamp a search is ordered by.
type OrderField string

const (
	OrderByCreated OrderField = "created"
	OrderByUpdated OrderField = "updated"
)

// SearchQuery describes which remote tickets to select. Zero-valued fields
// are not constrained. The adapter renders it to the remote query language.
type SearchQuery struct {
	Projects        []string
	ExcludeStatuses []string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	UpdatedFrom     *time.Time
	// CreatedWithin selects tickets created within this window before the
	// remote's own clock.
	CreatedWithin time.Duration
	OrderBy       OrderField
	Ascending     bool
}

// SearchRequest is one search call. PageSize is clamped to MaxPageSize.
// MaxResults bounds the multi-page SearchAll and is ignored by Search.
type SearchRequest struct {
	Query         SearchQuery
	StartAt       int
	PageSize      int
	MaxResults    int
	Fields        []string
	WithChangelog bool
	Timeout       time.Duration
}

// FetchOptions controls a single-ticket fetch.
type FetchOptions struct {
	Fields        []string
	WithChangelog bool
	Timeout       time.Duration
}

// RemoteTicket is one mapped remote record. Err is set when the record could
// not be mapped; Ticket is nil in that case.
type RemoteTicket struct {
	Key       string
	Ticket    *Ticket
	Changelog []*HistoryEntry
	Err       error
}

// SearchPage is one page of search results. Total is the remote's hint.
type SearchPage struct {
	Tickets []RemoteTicket
	StartAt int
	Total   int
}

// Source reads tickets from the remote tracker.
type Source interface {
	// Search fetches a single page.
	Search(ctx context.Context, req SearchRequest) (*SearchPage, error)

	// SearchAll pages through results until MaxResults is reached or the
	// remote reports no more data.
	SearchAll(ctx context.Context, req SearchRequest) ([]RemoteTicket, error)

	// Get fetches one ticket by key. Returns ErrSourceNotFound when absent.
	Get(ctx context.Context, key string, opts FetchOptions) (*RemoteTicket, error)
}
