package event

import (
	"github.com/nbd-wtf/go-nostr"
)

// Serialize returns the canonical encoding the ID is computed over:
// the compact JSON array [0, pubkey, created_at, kind, tags, content].
//
// This is the ONLY serialization used for identity. The wire JSON of an
// event (with id and sig) is never hashed.
func (e Event) Serialize() []byte {
	ne := e.toNostr()
	return ne.Serialize()
}

// CanonicalID recomputes the content-addressed ID from the event's fields,
// ignoring the stated ID and signature.
func (e Event) CanonicalID() string {
	ne := e.toNostr()
	return ne.GetID()
}

func (e Event) toNostr() nostr.Event {
	tags := make(nostr.Tags, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = nostr.Tag(t)
	}
	return nostr.Event{
		ID:        e.ID,
		PubKey:    e.PubKey,
		CreatedAt: nostr.Timestamp(e.CreatedAt),
		Kind:      int(e.Kind),
		Tags:      tags,
		Content:   e.Content,
		Sig:       e.Sig,
	}
}
