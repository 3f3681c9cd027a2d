package project

import (
	"slices"

	"github.com/roach88/gitnostr/internal/event"
)

// ofKind deduplicates events and keeps those of kind k, ordered by ID.
func ofKind(events []event.Event, k event.Kind) []event.Event {
	all := event.Dedup(events)
	return slices.DeleteFunc(all, func(ev event.Event) bool { return ev.Kind != k })
}

func exclude(ex []event.Exclusion, id string, err error) []event.Exclusion {
	return append(ex, event.Exclusion{EventID: id, Reason: string(StructuralCode(err))})
}

func checkKind(ev event.Event, want event.Kind) error {
	if ev.Kind != want {
		return structural(ErrCodeWrongKind, ev.ID, "expected kind %d (%s), got %d", int(want), want, int(ev.Kind))
	}
	return nil
}

// byTime sorts records by (created_at, id) ascending.
func byTime[T any](records []T, key func(T) (int64, string)) {
	slices.SortFunc(records, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		return event.CompareTime(at, aid, bt, bid)
	})
}
