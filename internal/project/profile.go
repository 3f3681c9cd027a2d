package project

import (
	"encoding/json"

	"github.com/roach88/gitnostr/internal/event"
)

type profileContent struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// Profile decodes an author's metadata event. Unknown fields are ignored;
// both name fields are optional.
func Profile(ev event.Event) (ProfileRecord, error) {
	if err := checkKind(ev, event.KindProfile); err != nil {
		return ProfileRecord{}, err
	}
	var body profileContent
	if err := json.Unmarshal([]byte(ev.Content), &body); err != nil {
		return ProfileRecord{}, structural(ErrCodeMalformedContent, ev.ID, "profile content: %v", err)
	}
	return ProfileRecord{
		ID:          ev.ID,
		Author:      ev.PubKey,
		CreatedAt:   ev.CreatedAt,
		Name:        body.Name,
		DisplayName: body.DisplayName,
	}, nil
}

// LatestProfiles returns the most recent decodable profile of each author,
// by (created_at, id).
func LatestProfiles(events []event.Event) map[string]ProfileRecord {
	out := make(map[string]ProfileRecord)
	for _, ev := range ofKind(events, event.KindProfile) {
		p, err := Profile(ev)
		if err != nil {
			continue
		}
		cur, ok := out[p.Author]
		if !ok || event.CompareTime(p.CreatedAt, p.ID, cur.CreatedAt, cur.ID) > 0 {
			out[p.Author] = p
		}
	}
	return out
}
