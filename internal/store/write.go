package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/gitnostr/internal/event"
)

// Publish appends ev to the replica together with its reference index.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - an event already present
// is silently ignored.
func (s *Store) Publish(ctx context.Context, ev event.Event) error {
	tags := ev.Tags
	if tags == nil {
		tags = [][]string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("publish: marshal tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("publish: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, pubkey, created_at, kind, tags, content, sig)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ev.ID, ev.PubKey, ev.CreatedAt, int(ev.Kind), string(tagsJSON), ev.Content, ev.Sig)
	if err != nil {
		return fmt.Errorf("publish: insert event: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish: rows affected: %w", err)
	}
	if inserted > 0 {
		for _, ref := range event.IndexTags(ev.Tags).Values(event.TagRef) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO event_refs (event_id, ref) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, ev.ID, ref); err != nil {
				return fmt.Errorf("publish: insert ref: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("publish: commit: %w", err)
	}
	return nil
}

// PublishAll appends every event in one transaction per event. It stops at
// the first failure and reports how many events were handled before it.
func (s *Store) PublishAll(ctx context.Context, events []event.Event) (int, error) {
	for i, ev := range events {
		if err := s.Publish(ctx, ev); err != nil {
			return i, err
		}
	}
	return len(events), nil
}
