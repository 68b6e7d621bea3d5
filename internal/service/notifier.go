package service

import (
	"context"
	"fmt"
	"log"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/repository"
)

// Notifier writes notification rows for booking lifecycle events and
// new messages. Every method is fire-and-forget: failures are logged
// and never surfaced to the caller.
type Notifier struct {
	notifications *repository.NotificationRepo
	users         *repository.UserRepo
}

// NewNotifier returns a Notifier over the given repositories.
func NewNotifier(notifications *repository.NotificationRepo, users *repository.UserRepo) *Notifier {
	return &Notifier{notifications: notifications, users: users}
}

func (n *Notifier) customerName(ctx context.Context, customerID uint64) string {
	u, err := n.users.GetByID(ctx, customerID)
	if err != nil {
		return "A customer"
	}
	return u.Name + " " + u.Surname
}

func (n *Notifier) write(ctx context.Context, note *model.Notification) {
	if err := n.notifications.Create(ctx, note); err != nil {
		log.Printf("notifier: write failed for user %d: %v", note.RecipientID, err)
	}
}

// BookingCreated notifies the property manager about a new reservation.
func (n *Notifier) BookingCreated(ctx context.Context, managerID, customerID uint64, reservationID string) {
	n.write(ctx, &model.Notification{
		RecipientID: managerID,
		Title:       "New Booking made",
		Body:        fmt.Sprintf("Customer %s has made a new reservation.", n.customerName(ctx, customerID)),
		Type:        model.NotifReservationCreated,
		ReferenceID: reservationID,
	})
}

// BookingModified notifies the property manager about a changed stay.
func (n *Notifier) BookingModified(ctx context.Context, managerID, customerID uint64, reservationID string) {
	n.write(ctx, &model.Notification{
		RecipientID: managerID,
		Title:       "Booking modified",
		Body:        fmt.Sprintf("Customer %s has modified their reservation.", n.customerName(ctx, customerID)),
		Type:        model.NotifReservationModified,
		ReferenceID: reservationID,
	})
}

// BookingCancelled notifies the property manager about a cancellation.
func (n *Notifier) BookingCancelled(ctx context.Context, managerID, customerID uint64, reservationID string) {
	n.write(ctx, &model.Notification{
		RecipientID: managerID,
		Title:       "Booking cancelled",
		Body:        fmt.Sprintf("Customer %s has cancelled their reservation.", n.customerName(ctx, customerID)),
		Type:        model.NotifReservationCancelled,
		ReferenceID: reservationID,
	})
}

// MessageReceived notifies a user about a new direct message.
func (n *Notifier) MessageReceived(ctx context.Context, recipientID, senderID, messageID uint64) {
	n.write(ctx, &model.Notification{
		RecipientID: recipientID,
		Title:       "New message",
		Body:        fmt.Sprintf("You have received a new message from %s.", n.customerName(ctx, senderID)),
		Type:        model.NotifMessage,
		ReferenceID: fmt.Sprintf("%d", messageID),
	})
}
