// Package source defines how projections obtain events and fans a query out
// to several independently operated replicas.
//
// A Source may return a partial, duplicated or empty set and may ignore any
// part of the filter. Callers validate, deduplicate and re-check everything
// they rely on. The only failure a Source reports is that it could not
// answer at all.
package source

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/roach88/gitnostr/internal/event"
)

// Source retrieves events matching a filter.
type Source interface {
	Fetch(ctx context.Context, f event.Filter) ([]event.Event, error)
}

// Sink accepts new events. Publishing an event that is already present is
// not an error.
type Sink interface {
	Publish(ctx context.Context, ev event.Event) error
}

// Func adapts a function to Source.
type Func func(ctx context.Context, f event.Filter) ([]event.Event, error)

// Fetch implements Source.
func (fn Func) Fetch(ctx context.Context, f event.Filter) ([]event.Event, error) {
	return fn(ctx, f)
}

// Endpoint is a named Source. The name identifies it in logs, metrics and
// errors.
type Endpoint struct {
	Name   string
	Source Source
}

// ApplyLimit keeps the newest limit events, newest first by created_at with
// the ID breaking ties. A limit of zero or less keeps everything, in the same
// order.
func ApplyLimit(events []event.Event, limit int) []event.Event {
	slices.SortFunc(events, func(a, b event.Event) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
