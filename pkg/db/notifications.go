package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urmzd/homecare/pkg/notify"
)

// NotificationLog is a durable notify.Sink.
type NotificationLog struct {
	db *DB
}

var _ notify.Sink = (*NotificationLog)(nil)

// Notifications returns the notification log for this database.
func (db *DB) Notifications() *NotificationLog {
	return &NotificationLog{db: db}
}

// Deliver appends n to the log.
func (l *NotificationLog) Deliver(ctx context.Context, n notify.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, message, payload, acknowledged, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, n.ID, string(n.Kind), n.Message, string(payload), n.Acknowledged, n.Timestamp.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}

// Acknowledge marks the notification as read.
func (l *NotificationLog) Acknowledge(ctx context.Context, id string) error {
	result, err := l.db.ExecContext(ctx, `UPDATE notifications SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return notify.ErrNotFound
	}
	return nil
}

// Recent returns up to limit notifications, oldest first.
func (l *NotificationLog) Recent(ctx context.Context, limit int) ([]notify.Notification, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT payload, acknowledged FROM (
			SELECT payload, acknowledged, created_at FROM notifications
			ORDER BY created_at DESC LIMIT ?
		) ORDER BY created_at ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []notify.Notification
	for rows.Next() {
		var (
			payload string
			acked   bool
		)
		if err := rows.Scan(&payload, &acked); err != nil {
			return nil, err
		}
		var n notify.Notification
		if err := json.Unmarshal([]byte(payload), &n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		n.Acknowledged = acked
		out = append(out, n)
	}
	return out, rows.Err()
}
