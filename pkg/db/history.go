package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ChatMessage is one persisted conversation turn.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyEvent is a remembered state change.
type KeyEvent struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// Summary is a rolling conversation summary.
type Summary struct {
	Text         string     `json:"summary"`
	KeyEvents    []KeyEvent `json:"key_events"`
	MessageCount int        `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// History stores chat messages and summaries.
type History struct {
	db *DB
}

// History returns the conversation history for this database.
func (db *DB) History() *History {
	return &History{db: db}
}

// Append stores messages in order.
func (h *History) Append(ctx context.Context, msgs ...ChatMessage) error {
	return h.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, m := range msgs {
			at := m.CreatedAt
			if at.IsZero() {
				at = time.Now()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chat_history (role, content, created_at) VALUES (?, ?, ?)`,
				m.Role, m.Content, at.UTC().Format(timestampLayout),
			); err != nil {
				return fmt.Errorf("failed to append chat message: %w", err)
			}
		}
		return nil
	})
}

// Recent returns the last limit messages, oldest first.
func (h *History) Recent(ctx context.Context, limit int) ([]ChatMessage, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM (
			SELECT id, role, content, created_at FROM chat_history ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ChatMessage
	for rows.Next() {
		var (
			m  ChatMessage
			at string
		)
		if err := rows.Scan(&m.Role, &m.Content, &at); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(timestampLayout, at)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clear removes every message and summary.
func (h *History) Clear(ctx context.Context) error {
	return h.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chat_history`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM conversation_summaries`)
		return err
	})
}

// SaveSummary records a new summary.
func (h *History) SaveSummary(ctx context.Context, s Summary) error {
	events, err := json.Marshal(s.KeyEvents)
	if err != nil {
		return err
	}
	at := s.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO conversation_summaries (summary, key_events, message_count, created_at)
		VALUES (?, ?, ?, ?)
	`, s.Text, string(events), s.MessageCount, at.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// LatestSummary returns the most recent summary, or nil when none exists.
func (h *History) LatestSummary(ctx context.Context) (*Summary, error) {
	var (
		s      Summary
		events string
		at     string
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT summary, key_events, message_count, created_at
		FROM conversation_summaries ORDER BY id DESC LIMIT 1
	`).Scan(&s.Text, &events, &s.MessageCount, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(events), &s.KeyEvents); err != nil {
		return nil, fmt.Errorf("failed to decode key events: %w", err)
	}
	s.CreatedAt, _ = time.Parse(timestampLayout, at)
	return &s, nil
}
