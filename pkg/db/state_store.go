package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urmzd/homecare/pkg/home"
)

// StateStore keeps the home snapshot in the single home_state row.
type StateStore struct {
	db *DB
}

var _ home.Store = (*StateStore)(nil)

// HomeState returns the snapshot store for this database.
func (db *DB) HomeState() *StateStore {
	return &StateStore{db: db}
}

// Load returns the saved snapshot, or nil when nothing has been saved.
func (s *StateStore) Load(ctx context.Context) (*home.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM home_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read home state: %w", err)
	}

	var snap home.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode home state: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot.
func (s *StateStore) Save(ctx context.Context, snap home.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode home state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO home_state (id, snapshot, updated_at) VALUES (1, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at
	`, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save home state: %w", err)
	}
	return nil
}
