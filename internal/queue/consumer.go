// Package queue contains the background consumer that listens to the
// reservation.synced queue and keeps the booking_edges projection in
// step with confirmed reservations.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lrotelli01/largebnb/internal/model"
)

const syncQueueName = "reservation.synced"

// EdgeStore is the subset of the graph repository the consumer needs.
type EdgeStore interface {
	UpsertBooking(ctx context.Context, e model.BookingEdge) error
	DeleteBooking(ctx context.Context, reservationID string) error
}

// StartGraphConsumer connects to RabbitMQ, declares the durable
// reservation.synced queue and applies each event to the projection.
// It runs a reconnect loop with exponential backoff and never returns;
// processing errors are logged and the message rejected without
// requeue so a bad payload cannot wedge the queue.
func StartGraphConsumer(url string, store EdgeStore) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("graph-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, store); err != nil {
			log.Printf("graph-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, store EdgeStore) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("graph-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(syncQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(syncQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, store); err != nil {
			log.Printf("graph-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, store EdgeStore) error {
	var ev ReservationSyncedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.Action {
	case ActionDelete:
		return store.DeleteBooking(ctx, ev.ReservationID)
	case ActionUpsert:
		checkIn, err := time.Parse(time.DateOnly, ev.CheckIn)
		if err != nil {
			return fmt.Errorf("parse check_in: %w", err)
		}
		checkOut, err := time.Parse(time.DateOnly, ev.CheckOut)
		if err != nil {
			return fmt.Errorf("parse check_out: %w", err)
		}
		return store.UpsertBooking(ctx, model.BookingEdge{
			ReservationID: ev.ReservationID,
			UserID:        ev.UserID,
			PropertyID:    ev.PropertyID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			TotalPrice:    ev.TotalPrice,
		})
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
}
