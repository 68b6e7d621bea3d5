// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by ReservationSyncedEvent.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ReservationSyncedEvent is published on the reservation.synced queue
// whenever a booking is confirmed, modified or cancelled. The graph
// consumer applies it to the booking_edges projection, so the payload
// carries the full edge rather than just an ID.
type ReservationSyncedEvent struct {
	Action        string  `json:"action"`
	ReservationID string  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	PropertyID    uint64  `json:"property_id"`
	CheckIn       string  `json:"check_in"`  // YYYY-MM-DD
	CheckOut      string  `json:"check_out"` // YYYY-MM-DD
	TotalPrice    float64 `json:"total_price"`
	SyncedAt      string  `json:"synced_at"` // RFC 3339
}
