package model

import "time"

// Message is a direct message between a customer and a manager.
type Message struct {
	ID          uint64    // messages.id
	SenderID    uint64    // messages.sender_id
	RecipientID uint64    // messages.recipient_id
	Content     string    // messages.content
	IsRead      bool      // messages.is_read
	CreatedAt   time.Time // messages.created_at
}
