package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/metrics"
	"github.com/roach88/gitnostr/internal/names"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/source"
)

// DefaultFetchTimeout bounds a single fetch, across all endpoints.
const DefaultFetchTimeout = 15 * time.Second

// PolicyFactory builds the status policy of an issue. repoOwner is empty
// when the repository could not be found.
type PolicyFactory func(issue project.IssueRecord, repoOwner string) project.Policy

// DefaultPolicy lets the issue's author and the repository's owner set the
// status.
func DefaultPolicy(issue project.IssueRecord, repoOwner string) project.Policy {
	return project.StatusPolicy(issue.Author, repoOwner)
}

// Engine projects records from a Source.
type Engine struct {
	src          source.Source
	sink         source.Sink
	validator    *event.Validator
	resolver     *names.Resolver
	metrics      *metrics.Metrics
	logger       *slog.Logger
	fetchTimeout time.Duration
	policy       PolicyFactory
	now          func() int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets where Publish writes.
func WithSink(s source.Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithNames enables author name enrichment.
func WithNames(r *names.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithMetrics records exclusions and completed projections.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFetchTimeout bounds each fetch. Zero or less disables the bound.
//
// Default: 15s (DefaultFetchTimeout)
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithStatusPolicy replaces DefaultPolicy, e.g. to admit co-maintainers.
func WithStatusPolicy(p PolicyFactory) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithValidator replaces the Schnorr validator.
func WithValidator(v *event.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithClock sets the source of created_at values for Submit.
// Default: wall clock seconds.
func WithClock(now func() int64) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine reading from src.
func New(src source.Source, opts ...Option) *Engine {
	e := &Engine{
		src:          src,
		validator:    event.NewValidator(nil),
		logger:       slog.Default(),
		fetchTimeout: DefaultFetchTimeout,
		policy:       DefaultPolicy,
		now:          func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetch runs one query against the source and returns the validated,
// deduplicated result. what names the query in logs.
func (e *Engine) fetch(ctx context.Context, what string, f event.Filter) ([]event.Event, error) {
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	raw, err := e.src.Fetch(ctx, f)
	if err != nil {
		if !source.IsSourceError(err) {
			err = source.Failure("source", err)
		}
		return nil, fmt.Errorf("fetch %s: %w", what, err)
	}

	batch := e.validator.Collect(raw)
	e.excluded(ctx, what, batch.Exclusions)
	return batch.Events, nil
}

func (e *Engine) excluded(ctx context.Context, what string, ex []event.Exclusion) {
	for _, x := range ex {
		e.metrics.IncrementExcluded(x.Reason)
		e.logger.DebugContext(ctx, "event excluded",
			"query", what,
			"event_id", x.EventID,
			"reason", x.Reason,
		)
	}
}

func (e *Engine) enrich(ctx context.Context, authors []string) {
	if e.resolver == nil || len(authors) == 0 {
		return
	}
	e.resolver.Enrich(ctx, authors)
}

// Display renders pubkey for humans: its cached name or the npub fallback.
func (e *Engine) Display(ctx context.Context, pubkey string) string {
	if e.resolver == nil {
		return names.Fallback(pubkey)
	}
	return e.resolver.Display(ctx, pubkey)
}
