package engine

import (
	"context"
	"fmt"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/keys"
)

// Publish validates ev and writes it to the sink. Invalid events are
// rejected with their *event.ValidationError.
func (e *Engine) Publish(ctx context.Context, ev event.Event) error {
	if e.sink == nil {
		return ErrNoSink
	}
	if err := e.validator.Validate(ev); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := e.sink.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.ID, err)
	}
	e.logger.InfoContext(ctx, "event published",
		"event_id", ev.ID,
		"kind", ev.Kind.String(),
	)
	return nil
}

// Submit signs drafts in order and publishes each. Timestamps strictly
// increase across the batch, so a closing comment always sorts before the
// status update that follows it.
//
// Returns the events published before any failure.
func (e *Engine) Submit(ctx context.Context, signer *keys.Signer, drafts ...event.Draft) ([]event.Event, error) {
	out := make([]event.Event, 0, len(drafts))
	var last int64
	for _, d := range drafts {
		at := e.now()
		if len(out) > 0 && at <= last {
			at = last + 1
		}
		ev, err := signer.Sign(d, at)
		if err != nil {
			return out, err
		}
		if err := e.Publish(ctx, ev); err != nil {
			return out, err
		}
		last = at
		out = append(out, ev)
	}
	return out, nil
}
