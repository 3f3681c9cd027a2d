package source

import (
	"context"
	"sync"

	"github.com/roach88/gitnostr/internal/event"
)

// Memory is an in-process replica. It is safe for concurrent use.
//
// Copies are collapsed only when every field matches. Two events stating the
// same ID but differing elsewhere are both kept, so a tampered copy stored
// first never hides the genuine one.
type Memory struct {
	mu     sync.RWMutex
	events []event.Event
	seen   map[string]struct{}
}

// NewMemory returns a replica holding a copy of events.
func NewMemory(events ...event.Event) *Memory {
	m := &Memory{seen: make(map[string]struct{})}
	for _, ev := range events {
		m.add(ev)
	}
	return m
}

func (m *Memory) add(ev event.Event) {
	key := structuralKey(ev)
	if _, ok := m.seen[key]; ok {
		return
	}
	m.seen[key] = struct{}{}
	m.events = append(m.events, ev.Clone())
}

// structuralKey covers the stated id and signature plus the canonical
// encoding of everything the id is computed over.
func structuralKey(ev event.Event) string {
	return ev.ID + "\x00" + ev.Sig + "\x00" + string(ev.Serialize())
}

// Publish implements Sink. The event is stored as given; Memory does not
// validate.
func (m *Memory) Publish(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(ev)
	return nil
}

// Fetch implements Source.
func (m *Memory) Fetch(ctx context.Context, f event.Filter) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []event.Event{}
	for _, ev := range m.events {
		if f.Matches(ev) {
			out = append(out, ev.Clone())
		}
	}
	return ApplyLimit(out, f.Limit), nil
}

// Len returns the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
