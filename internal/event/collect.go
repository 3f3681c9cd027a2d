package event

import (
	"cmp"
	"slices"
	"strings"
)

// Exclusion records an event left out of a projection and why.
// Reason is a stable code (a ValidationErrorCode or a structural code).
type Exclusion struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// SortExclusions orders exclusions by (EventID, Reason) and drops exact
// repeats, so repeated deliveries of one bad event report it once.
func SortExclusions(ex []Exclusion) []Exclusion {
	slices.SortFunc(ex, func(a, b Exclusion) int {
		if c := strings.Compare(a.EventID, b.EventID); c != 0 {
			return c
		}
		return cmp.Compare(a.Reason, b.Reason)
	})
	return slices.Compact(ex)
}

// Dedup collapses repeated deliveries of the same event. The first-seen copy
// of each ID is kept. The result is sorted by ID: it is a set, and callers
// must re-establish whatever order they need.
func Dedup(events []Event) []Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.ID]; ok {
			continue
		}
		seen[ev.ID] = struct{}{}
		out = append(out, ev)
	}
	slices.SortFunc(out, func(a, b Event) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Batch is a validated, deduplicated event set plus what was dropped.
type Batch struct {
	Events     []Event
	Exclusions []Exclusion
}

// Collect validates every event and deduplicates the survivors.
//
// Validation runs before deduplication: a forged copy carrying a genuine ID
// must not shadow the genuine copy delivered by another endpoint.
func (v *Validator) Collect(events []Event) Batch {
	valid := make([]Event, 0, len(events))
	var excluded []Exclusion
	for _, ev := range events {
		if err := v.Validate(ev); err != nil {
			excluded = append(excluded, Exclusion{
				EventID: ev.ID,
				Reason:  string(ValidationCode(err)),
			})
			continue
		}
		valid = append(valid, ev)
	}
	return Batch{
		Events:     Dedup(valid),
		Exclusions: SortExclusions(excluded),
	}
}

// Collect validates and deduplicates with the default validator.
func Collect(events []Event) Batch {
	return defaultValidator.Collect(events)
}
