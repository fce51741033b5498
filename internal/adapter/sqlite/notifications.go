package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type notificationRepo struct {
	q querier
}

func (r notificationRepo) Create(ctx context.Context, n domain.Notification) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO notifications (id, id_recipient, id_application, kind, title, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		n.ID, n.RecipientID, n.ApplicationID, string(n.Kind), n.Title, n.Body, formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r notificationRepo) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, id_recipient, id_application, kind, title, body, created_at
		 FROM notifications WHERE id_recipient = ?
		 ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var kind, createdAt string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ApplicationID, &kind, &n.Title, &n.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Kind = domain.NotificationKind(kind)
		n.CreatedAt = parseTime(createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
