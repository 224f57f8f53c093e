// Package jira adapts the remote issue tracker to the ticket.Source port.
package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andygrunwald/go-jira"
	"github.com/sony/gobreaker/v2"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/metrics"
	"github.com/metashield/jirasync/internal/shared/config"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const (
	defaultTimeout  = 30 * time.Second
	allFields       = "*all"
	expandChangelog = "changelog"
)

// Client implements ticket.Source on top of go-jira. It is stateless apart
// from the shared circuit breaker and safe for concurrent use.
type Client struct {
	api       *jira.Client
	issueType string
	mapper    *Mapper
	breaker   *gobreaker.CircuitBreaker[any]
	timeout   time.Duration
	retry     RetryPolicy
	now       func() time.Time
	logger    logger.Interface
}

var _ ticket.Source = (*Client)(nil)

// NewClient creates a client authenticating with the configured email and
// API token.
func NewClient(cfg config.JiraConfig, catalog FieldCatalog, log logger.Interface) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}

	api, err := jira.NewClient(tp.Client(), cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		api:       api,
		issueType: cfg.IssueType,
		mapper:    NewMapper(catalog),
		breaker:   newBreaker(cfg.Breaker, log),
		timeout:   timeout,
		now:       time.Now,
		logger:    log,
	}, nil
}

// WithRetryPolicy returns a copy of the client that retries every call
// under p. The copy shares the circuit breaker.
func (c *Client) WithRetryPolicy(p RetryPolicy) *Client {
	cp := *c
	cp.retry = p
	return &cp
}

// Search fetches one page of tickets.
func (c *Client) Search(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
	jql := RenderJQL(c.issueType, req.Query)
	opts := &jira.SearchOptions{
		StartAt:    req.StartAt,
		MaxResults: clampPageSize(req.PageSize),
		Fields:     fieldList(req.Fields),
	}
	if req.WithChangelog {
		opts.Expand = expandChangelog
	}

	type searchResult struct {
		issues []jira.Issue
		total  int
	}

	res, err := call(ctx, c, "search", req.Timeout, func(ctx context.Context) (*searchResult, error) {
		issues, resp, err := c.api.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, classify(ctx, resp, err)
		}
		total := len(issues)
		if resp != nil {
			total = resp.Total
		}
		return &searchResult{issues: issues, total: total}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %q at %d: %w", jql, req.StartAt, err)
	}

	syncedAt := c.now().UTC()
	page := &ticket.SearchPage{
		Tickets: make([]ticket.RemoteTicket, 0, len(res.issues)),
		StartAt: req.StartAt,
		Total:   res.total,
	}
	for i := range res.issues {
		page.Tickets = append(page.Tickets, c.toRemote(&res.issues[i], syncedAt, req.WithChangelog))
	}
	return page, nil
}

// SearchAll pages through the results. It stops at MaxResults, on a short
// or empty page, or once the remote total is reached.
func (c *Client) SearchAll(ctx context.Context, req ticket.SearchRequest) ([]ticket.RemoteTicket, error) {
	pageSize := clampPageSize(req.PageSize)
	limit := req.MaxResults
	if limit <= 0 {
		limit = pageSize
	}

	var all []ticket.RemoteTicket
	startAt := req.StartAt
	for len(all) < limit {
		pageReq := req
		pageReq.StartAt = startAt
		pageReq.PageSize = min(pageSize, limit-len(all))

		page, err := c.Search(ctx, pageReq)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Tickets...)
		startAt += len(page.Tickets)

		if len(page.Tickets) < pageReq.PageSize || startAt >= page.Total {
			break
		}
	}
	return all, nil
}

// Get fetches a single ticket by key.
func (c *Client) Get(ctx context.Context, key string, opts ticket.FetchOptions) (*ticket.RemoteTicket, error) {
	query := &jira.GetQueryOptions{
		Fields: strings.Join(fieldList(opts.Fields), ","),
	}
	if opts.WithChangelog {
		query.Expand = expandChangelog
	}

	issue, err := call(ctx, c, "get", opts.Timeout, func(ctx context.Context) (*jira.Issue, error) {
		issue, resp, err := c.api.Issue.GetWithContext(ctx, key, query)
		if err != nil {
			return nil, classify(ctx, resp, err)
		}
		return issue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	remote := c.toRemote(issue, c.now().UTC(), opts.WithChangelog)
	return &remote, nil
}

func (c *Client) toRemote(issue *jira.Issue, syncedAt time.Time, withChangelog bool) ticket.RemoteTicket {
	remote := ticket.RemoteTicket{Key: issue.Key}
	remote.Ticket, remote.Err = c.mapper.Map(issue, syncedAt)
	if remote.Err == nil && withChangelog {
		remote.Changelog = c.mapper.MapChangelog(issue)
	}
	return remote
}

// call runs fn under the retry policy, the circuit breaker and a per-attempt
// deadline. An explicit timeout overrides the policy's deadlines.
func call[T any](ctx context.Context, c *Client, operation string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	return retry(ctx, c.retry, func(attempt int) (T, error) {
		deadline := timeout
		if deadline <= 0 {
			deadline = c.retry.TimeoutFor(attempt, c.timeout)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, deadline)
		defer cancel()

		start := time.Now()
		res, err := c.breaker.Execute(func() (any, error) {
			return fn(attemptCtx)
		})
		if err != nil && !isSourceError(err) {
			err = classify(attemptCtx, nil, err)
		}
		metrics.RecordJiraRequest(operation, outcome(err), time.Since(start))

		if err != nil {
			var zero T
			return zero, err
		}
		typed, ok := res.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("%w: unexpected result type %T", ticket.ErrSourceUnavailable, res)
		}
		return typed, nil
	}, func(attempt int, err error, wait time.Duration) {
		c.logger.Warnw("jira request failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"wait", wait.String(),
			"error", err,
		)
	})
}

func clampPageSize(size int) int {
	if size <= 0 || size > ticket.MaxPageSize {
		return ticket.MaxPageSize
	}
	return size
}

func fieldList(fields []string) []string {
	if len(fields) == 0 {
		return []string{allFields}
	}
	return fields
}
