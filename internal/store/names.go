package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NameTable is the name cache kept beside the replica. It satisfies
// names.Cache.
type NameTable struct {
	db  *sql.DB
	now func() time.Time
}

// Names returns the store's name cache.
func (s *Store) Names() *NameTable {
	return &NameTable{db: s.db, now: time.Now}
}

// Get returns the cached display name of pubkey.
func (n *NameTable) Get(ctx context.Context, pubkey string) (string, bool, error) {
	var name string
	err := n.db.QueryRowContext(ctx, "SELECT name FROM names WHERE pubkey = ?", pubkey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get name: %w", err)
	}
	return name, true, nil
}

// Put stores the display name of pubkey. Last write wins.
func (n *NameTable) Put(ctx context.Context, pubkey, name string) error {
	_, err := n.db.ExecContext(ctx, `
		INSERT INTO names (pubkey, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(pubkey) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, pubkey, name, n.now().Unix())
	if err != nil {
		return fmt.Errorf("put name: %w", err)
	}
	return nil
}
