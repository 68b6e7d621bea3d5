package repository

import (
	"context"
	"database/sql"

	"github.com/lrotelli01/largebnb/internal/model"
)

// NotificationRepo stores per-user notification rows.
type NotificationRepo struct{ DB *sql.DB }

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification and populates its generated ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, title, body, type, reference_id) VALUES (?,?,?,?,?)`,
		n.RecipientID, n.Title, n.Body, n.Type, n.ReferenceID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByRecipient returns a user's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, recipient_id, title, body, type, reference_id, is_read, created_at
		 FROM notifications WHERE recipient_id=? ORDER BY created_at DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.Type, &n.ReferenceID,
			&n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one of the user's notifications as read. Returns
// ErrNotFound when the notification does not exist or belongs to
// someone else.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read=1 WHERE id=? AND recipient_id=?`, notificationID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read=1 WHERE recipient_id=? AND is_read=0`, userID)
	return err
}
