package model

import "time"

// Reservation status values.  A reservation is only ever persisted in
// CONFIRMED state; PENDING_PAYMENT exists exclusively on holds in the
// lock store.  COMPLETED is set out of band after checkout.
const (
	StatusPendingPayment = "PENDING_PAYMENT"
	StatusConfirmed      = "CONFIRMED"
	StatusCancelled      = "CANCELLED"
	StatusCompleted      = "COMPLETED"
)

// Reservation records a customer's stay in a specific room.  IDs are
// generated application-side (32 hex chars) so that the same shape can
// live in the lock store before it is ever written to MySQL.
//
// Fields:
//  ID        – application-generated identifier.
//  UserID    – customer who booked.
//  RoomID    – room being booked.
//  Adults    – adult guests, at least 1.
//  Children  – child guests, zero or more.
//  CheckIn   – first night (inclusive).
//  CheckOut  – departure day (exclusive).
//  Status    – one of the Status* constants.
//  CreatedAt – set once when the reservation is persisted.
type Reservation struct {
	ID        string    // reservations.id
	UserID    uint64    // reservations.user_id
	RoomID    uint64    // reservations.room_id
	Adults    int       // reservations.adults
	Children  int       // reservations.children
	CheckIn   time.Time // reservations.check_in (DATE)
	CheckOut  time.Time // reservations.check_out (DATE)
	Status    string    // reservations.status
	CreatedAt time.Time // reservations.created_at
}

// Overlaps reports whether the reservation's date range intersects
// [checkIn, checkOut) using the standard half-open interval test.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && r.CheckOut.After(checkIn)
}

// Hold is a temporary, non-durable reservation of a room/date-range
// pending payment.  Holds live only in the lock store under
// temp_res:{ID} with a fixed TTL; they are never visible to durable
// queries.  A hold is destroyed by TTL expiry, explicit release, or
// conversion into a confirmed Reservation.
//
// Fields mirror Reservation; Status is always PENDING_PAYMENT.
type Hold struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"user_id"`
	RoomID    uint64    `json:"room_id"`
	Adults    int       `json:"adults"`
	Children  int       `json:"children"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether the hold's date range intersects
// [checkIn, checkOut).
func (h *Hold) Overlaps(checkIn, checkOut time.Time) bool {
	return h.CheckIn.Before(checkOut) && h.CheckOut.After(checkIn)
}

// BookingEdge is one row of the graph projection fed by confirmed
// bookings.  The table is derived data: it can be dropped and rebuilt
// from the reservations table at any time, and the recommendation
// queries read only from it.
type BookingEdge struct {
	ReservationID string    // booking_edges.reservation_id
	UserID        uint64    // booking_edges.user_id
	PropertyID    uint64    // booking_edges.property_id
	CheckIn       time.Time // booking_edges.check_in
	CheckOut      time.Time // booking_edges.check_out
	TotalPrice    float64   // booking_edges.total_price
}
