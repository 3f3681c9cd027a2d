package project

import (
	"github.com/roach88/gitnostr/internal/event"
)

// Repository builds a record from one announcement. Both the location and
// the name tag are required; an announcement missing either is rejected in
// full rather than yielding a partially filled record.
func Repository(ev event.Event) (RepositoryRecord, error) {
	if err := checkKind(ev, event.KindRepository); err != nil {
		return RepositoryRecord{}, err
	}
	tags := event.IndexTags(ev.Tags)
	location, ok := tags.Value(event.TagLocation)
	if !ok {
		return RepositoryRecord{}, structural(ErrCodeRepoUndefined, ev.ID, "announcement has no location tag")
	}
	name, ok := tags.Value(event.TagName)
	if !ok {
		return RepositoryRecord{}, structural(ErrCodeRepoUndefined, ev.ID, "announcement has no name tag")
	}
	return RepositoryRecord{
		ID:          ev.ID,
		Owner:       ev.PubKey,
		Name:        name,
		Description: ev.Content,
		Location:    location,
		CreatedAt:   ev.CreatedAt,
	}, nil
}

// Repositories projects every announcement in events, one record per valid
// event, ordered by (created_at, id). Events of other kinds are ignored.
func Repositories(events []event.Event) ([]RepositoryRecord, []event.Exclusion) {
	out := []RepositoryRecord{}
	var excluded []event.Exclusion
	for _, ev := range ofKind(events, event.KindRepository) {
		rec, err := Repository(ev)
		if err != nil {
			excluded = exclude(excluded, ev.ID, err)
			continue
		}
		out = append(out, rec)
	}
	byTime(out, func(r RepositoryRecord) (int64, string) { return r.CreatedAt, r.ID })
	return out, event.SortExclusions(excluded)
}
