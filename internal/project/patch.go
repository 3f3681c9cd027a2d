package project

import (
	"encoding/json"

	"github.com/roach88/gitnostr/internal/event"
)

// patchContent is the JSON payload of a patch event.
type patchContent struct {
	Description string `json:"description"`
	Patch       string `json:"patch"`
}

// Patch builds a record from one patch submission. The name tag is
// required and the content must be a {description, patch} object.
func Patch(ev event.Event) (PatchRecord, error) {
	if err := checkKind(ev, event.KindPatch); err != nil {
		return PatchRecord{}, err
	}
	tags := event.IndexTags(ev.Tags)
	name, ok := tags.Value(event.TagName)
	if !ok {
		return PatchRecord{}, structural(ErrCodeMissingName, ev.ID, "patch has no name tag")
	}
	repo, _ := tags.Value(event.TagRef)

	var body patchContent
	if err := json.Unmarshal([]byte(ev.Content), &body); err != nil {
		return PatchRecord{}, structural(ErrCodeMalformedContent, ev.ID, "patch content: %v", err)
	}
	return PatchRecord{
		ID:          ev.ID,
		Repository:  repo,
		Author:      ev.PubKey,
		CreatedAt:   ev.CreatedAt,
		Name:        name,
		Description: body.Description,
		Diff:        body.Patch,
	}, nil
}

// Patches projects the patches submitted to repoID, ordered by
// (created_at, id). Patches are not versioned: two submissions with the same
// name are two records.
func Patches(repoID string, events []event.Event) ([]PatchRecord, []event.Exclusion) {
	out := []PatchRecord{}
	var excluded []event.Exclusion
	for _, ev := range ofKind(events, event.KindPatch) {
		rec, err := Patch(ev)
		if err != nil {
			if ev.References(repoID) {
				excluded = exclude(excluded, ev.ID, err)
			}
			continue
		}
		if !ev.References(repoID) {
			continue
		}
		rec.Repository = repoID
		out = append(out, rec)
	}
	byTime(out, func(r PatchRecord) (int64, string) { return r.CreatedAt, r.ID })
	return out, event.SortExclusions(excluded)
}
