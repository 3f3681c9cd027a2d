package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/metrics"
)

// DefaultTimeout bounds each endpoint's share of a fetch.
const DefaultTimeout = 10 * time.Second

// Multi fans a fetch out to every endpoint concurrently and concatenates the
// answers in endpoint order. A failing endpoint is logged and skipped; the
// fetch only fails when every endpoint failed.
//
// The result is not deduplicated: the same event typically arrives once per
// endpoint that holds it.
type Multi struct {
	endpoints   []Endpoint
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// MultiOption configures a Multi.
type MultiOption func(*Multi)

// WithTimeout sets the per-endpoint timeout. Zero or less disables it.
func WithTimeout(d time.Duration) MultiOption {
	return func(m *Multi) {
		m.timeout = d
	}
}

// WithConcurrency caps how many endpoints are queried at once.
// Default: unlimited.
func WithConcurrency(n int) MultiOption {
	return func(m *Multi) {
		m.concurrency = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) MultiOption {
	return func(m *Multi) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records endpoint failures and fetch latency.
func WithMetrics(mt *metrics.Metrics) MultiOption {
	return func(m *Multi) {
		m.metrics = mt
	}
}

// NewMulti creates a fan-out over endpoints. The slice is copied.
func NewMulti(endpoints []Endpoint, opts ...MultiOption) *Multi {
	m := &Multi{
		endpoints: append([]Endpoint(nil), endpoints...),
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Endpoints returns the configured endpoint names in order.
func (m *Multi) Endpoints() []string {
	names := make([]string, len(m.endpoints))
	for i, ep := range m.endpoints {
		names[i] = ep.Name
	}
	return names
}

// Fetch implements Source.
func (m *Multi) Fetch(ctx context.Context, f event.Filter) ([]event.Event, error) {
	if len(m.endpoints) == 0 {
		return nil, &Error{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchID := newFetchID()
	start := time.Now()
	defer m.metrics.ObserveFetch(start)

	results := make([][]event.Event, len(m.endpoints))
	errs := make([]error, len(m.endpoints))

	// No WithContext: one endpoint failing must not cancel the others.
	var g errgroup.Group
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	for i, ep := range m.endpoints {
		i, ep := i, ep
		g.Go(func() error {
			fctx := ctx
			if m.timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, m.timeout)
				defer cancel()
			}
			results[i], errs[i] = ep.Source.Fetch(fctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var out []event.Event
	failed := 0
	failures := make(map[string]error)
	for i, ep := range m.endpoints {
		if errs[i] != nil {
			failed++
			key := ep.Name
			if _, dup := failures[key]; dup {
				key = fmt.Sprintf("%s#%d", ep.Name, i)
			}
			failures[key] = errs[i]
			m.metrics.IncrementSourceFailure(ep.Name)
			m.logger.WarnContext(ctx, "endpoint fetch failed",
				"fetch_id", fetchID,
				"endpoint", ep.Name,
				"error", errs[i],
			)
			continue
		}
		out = append(out, results[i]...)
	}

	if failed == len(m.endpoints) {
		return nil, &Error{Failures: failures}
	}

	m.logger.DebugContext(ctx, "fetch complete",
		"fetch_id", fetchID,
		"endpoints", len(m.endpoints),
		"failed", failed,
		"events", len(out),
		"duration", time.Since(start),
	)
	if out == nil {
		out = []event.Event{}
	}
	return out, nil
}

func newFetchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
