package model

import "time"

// Notification event types.
const (
	NotifMessage             = "MESSAGE"
	NotifReservationCreated  = "RESERVATION_CREATED"
	NotifReservationModified = "RESERVATION_MODIFIED"
	NotifReservationCancelled = "RESERVATION_CANCELLED"
)

// Notification is a row shown in a user's notification feed.  Delivery
// mechanics (push, email) are out of scope; the dispatcher only writes
// rows, fire-and-forget.
//
// Fields:
//  ID          – primary key identifier.
//  RecipientID – user who receives the notification.
//  Title       – short headline, e.g. "New Booking made".
//  Body        – human-readable body text.
//  Type        – one of the Notif* constants.
//  ReferenceID – ID of the related reservation or message.
//  IsRead      – read status.
//  CreatedAt   – creation timestamp.
type Notification struct {
	ID          uint64    // notifications.id
	RecipientID uint64    // notifications.recipient_id
	Title       string    // notifications.title
	Body        string    // notifications.body
	Type        string    // notifications.type
	ReferenceID string    // notifications.reference_id
	IsRead      bool      // notifications.is_read
	CreatedAt   time.Time // notifications.created_at
}
