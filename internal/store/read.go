package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/gitnostr/internal/event"
)

// Fetch returns the stored events matching f, newest first.
// Results are ordered deterministically: ORDER BY created_at DESC,
// id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Fetch(ctx context.Context, f event.Filter) ([]event.Event, error) {
	query, args := buildFetchQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := []event.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func buildFetchQuery(f event.Filter) (string, []any) {
	var where []string
	var args []any

	in := func(column string, values []string) {
		where = append(where, column+" IN ("+placeholders(len(values))+")")
		for _, v := range values {
			args = append(args, v)
		}
	}

	if len(f.IDs) > 0 {
		in("e.id", f.IDs)
	}
	if len(f.Authors) > 0 {
		in("e.pubkey", f.Authors)
	}
	if len(f.Kinds) > 0 {
		where = append(where, "e.kind IN ("+placeholders(len(f.Kinds))+")")
		for _, k := range f.Kinds {
			args = append(args, int(k))
		}
	}
	if len(f.Refs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM event_refs r WHERE r.event_id = e.id AND r.ref IN ("+placeholders(len(f.Refs))+"))")
		for _, r := range f.Refs {
			args = append(args, r)
		}
	}
	if f.Since != nil {
		where = append(where, "e.created_at >= ?")
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		where = append(where, "e.created_at <= ?")
		args = append(args, *f.Until)
	}

	var b strings.Builder
	b.WriteString("SELECT e.id, e.pubkey, e.created_at, e.kind, e.tags, e.content, e.sig FROM events e")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY e.created_at DESC, e.id COLLATE BINARY ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return b.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanEvent(rows *sql.Rows) (event.Event, error) {
	var ev event.Event
	var kind int
	var tagsJSON string
	if err := rows.Scan(&ev.ID, &ev.PubKey, &ev.CreatedAt, &kind, &tagsJSON, &ev.Content, &ev.Sig); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Kind = event.Kind(kind)
	if err := json.Unmarshal([]byte(tagsJSON), &ev.Tags); err != nil {
		return event.Event{}, fmt.Errorf("unmarshal tags of %s: %w", ev.ID, err)
	}
	return ev, nil
}
