package repository

import (
	"context"
	"database/sql"

	"github.com/lrotelli01/largebnb/internal/model"
)

// MessageRepo stores direct messages between customers and managers.
type MessageRepo struct{ DB *sql.DB }

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// Create inserts a message and populates its generated ID.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, content) VALUES (?,?,?)`,
		m.SenderID, m.RecipientID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Conversation returns the full message thread between two users in
// chronological order.
func (r *MessageRepo) Conversation(ctx context.Context, userA, userB uint64) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, sender_id, recipient_id, content, is_read, created_at FROM messages
		 WHERE (sender_id=? AND recipient_id=?) OR (sender_id=? AND recipient_id=?)
		 ORDER BY created_at`, userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Partners returns the distinct user IDs the given user has exchanged
// messages with, most recent conversation first.
func (r *MessageRepo) Partners(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT partner FROM (
		   SELECT IF(sender_id=?, recipient_id, sender_id) AS partner, MAX(created_at) AS last_at
		   FROM messages WHERE sender_id=? OR recipient_id=?
		   GROUP BY partner
		 ) t ORDER BY last_at DESC`, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkConversationRead marks every message sent by `from` to the user
// as read.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, userID, from uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE messages SET is_read=1 WHERE recipient_id=? AND sender_id=? AND is_read=0`, userID, from)
	return err
}

// UnreadCount returns how many unread messages the user has.
func (r *MessageRepo) UnreadCount(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id=? AND is_read=0`, userID).Scan(&n)
	return n, err
}
