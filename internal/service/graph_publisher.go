// Package service holds the small adapters between the reservation
// engine and the outside world: the queue-backed graph sync and the
// notification dispatcher.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lrotelli01/largebnb/internal/model"
	"github.com/lrotelli01/largebnb/internal/queue"
)

// GraphPublisher mirrors booking changes into the graph projection by
// publishing ReservationSyncedEvent messages. Publishing is best
// effort: every error is logged and returned so the engine can ignore
// it without failing the booking.
type GraphPublisher struct {
	url string
}

// NewGraphPublisher returns a publisher targeting the given AMQP URL.
func NewGraphPublisher(url string) *GraphPublisher { return &GraphPublisher{url: url} }

// UpsertBooking publishes an upsert event for the edge.
func (p *GraphPublisher) UpsertBooking(ctx context.Context, e model.BookingEdge) error {
	return p.publish(ctx, queue.ReservationSyncedEvent{
		Action:        queue.ActionUpsert,
		ReservationID: e.ReservationID,
		UserID:        e.UserID,
		PropertyID:    e.PropertyID,
		CheckIn:       e.CheckIn.Format(time.DateOnly),
		CheckOut:      e.CheckOut.Format(time.DateOnly),
		TotalPrice:    e.TotalPrice,
		SyncedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// DeleteBooking publishes a delete event for the reservation's edge.
func (p *GraphPublisher) DeleteBooking(ctx context.Context, reservationID string) error {
	return p.publish(ctx, queue.ReservationSyncedEvent{
		Action:        queue.ActionDelete,
		ReservationID: reservationID,
		SyncedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *GraphPublisher) publish(ctx context.Context, event queue.ReservationSyncedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare("reservation.synced", true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", "reservation.synced", false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
