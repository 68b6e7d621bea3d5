package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lrotelli01/largebnb/internal/model"
)

// HoldTTL is how long a pending hold blocks a room while the customer
// completes payment.  After expiry the lock store drops the entry and
// the room becomes visible as free to subsequent overlap checks.
const HoldTTL = 15 * time.Minute

// roomLockTTL bounds the per-room mutex taken around hold creation.  It
// only needs to cover the check-then-write sequence, so it is kept
// short; if the process dies mid-sequence the lock expires on its own.
const roomLockTTL = 5 * time.Second

// InventoryStore resolves rooms and their parent properties.  The
// engine reads rooms only; room CRUD belongs to the manager handlers.
type InventoryStore interface {
	// FindRoom returns the room only when it belongs to the given property.
	FindRoom(ctx context.Context, propertyID, roomID uint64) (*model.Room, error)
	// FindRoomByID returns a room regardless of property.
	FindRoomByID(ctx context.Context, roomID uint64) (*model.Room, error)
	// FindPropertyByRoom returns the property containing the room.
	FindPropertyByRoom(ctx context.Context, roomID uint64) (*model.Property, error)
}

// ReservationStore persists finalized reservations.  FindOverlapping is
// the authoritative availability check: it must exclude CANCELLED rows
// and use the half-open interval test
// existing.checkIn < newCheckOut AND existing.checkOut > newCheckIn.
type ReservationStore interface {
	FindOverlapping(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) ([]model.Reservation, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, res *model.Reservation) error
	UpdateStatus(ctx context.Context, id, status string) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
}

// HoldStore is the ephemeral lock store.  Entries expire server-side at
// their TTL.  ActiveByRoom must return only unexpired holds for the
// room, using the per-room index rather than a keyspace scan.
type HoldStore interface {
	Put(ctx context.Context, hold *model.Hold, ttl time.Duration) error
	// Get returns (nil, nil) when the hold is absent or expired.
	Get(ctx context.Context, holdID string) (*model.Hold, error)
	Delete(ctx context.Context, holdID string) error
	ActiveByRoom(ctx context.Context, roomID uint64) ([]model.Hold, error)
	// AcquireRoomLock takes the short-lived per-room mutex serializing
	// hold creation.  It returns false when another caller holds it.
	AcquireRoomLock(ctx context.Context, roomID uint64, ttl time.Duration) (bool, error)
	ReleaseRoomLock(ctx context.Context, roomID uint64) error
}

// CustomerResolver turns an authenticated user id into a Customer.  It
// must fail with ErrForbidden for accounts that are not customers, so
// the engine receives the capability as a typed value instead of
// checking roles itself.
type CustomerResolver interface {
	FindCustomer(ctx context.Context, userID uint64) (*model.Customer, error)
}

// PaymentGateway charges and refunds a tokenized payment method.  The
// engine never sees card data, only the opaque gateway token.
type PaymentGateway interface {
	Charge(ctx context.Context, gatewayToken string, amount float64) error
	Refund(ctx context.Context, gatewayToken string, amount float64) error
}

// GraphSync mirrors confirmed bookings into the recommendation graph.
// Both operations are best-effort: the engine logs failures and never
// blocks the booking path on them.
type GraphSync interface {
	UpsertBooking(ctx context.Context, edge model.BookingEdge) error
	DeleteBooking(ctx context.Context, reservationID string) error
}

// Notifier delivers fire-and-forget booking events to property
// managers.  Implementations swallow their own errors.
type Notifier interface {
	BookingCreated(ctx context.Context, managerID, customerID uint64, reservationID string)
	BookingModified(ctx context.Context, managerID, customerID uint64, reservationID string)
	BookingCancelled(ctx context.Context, managerID, customerID uint64, reservationID string)
}

// IDGenerator produces hold and reservation identifiers.
type IDGenerator func() (string, error)

// Engine orchestrates the reservation lifecycle.  All coordination is
// externalized to the two stores; the engine keeps no mutable state and
// is safe for concurrent use by independent request workers.
type Engine struct {
	inventory    InventoryStore
	reservations ReservationStore
	holds        HoldStore
	customers    CustomerResolver
	gateway      PaymentGateway
	graph        GraphSync
	notifier     Notifier
	newID        IDGenerator
	holdTTL      time.Duration
}

// NewEngine constructs an Engine.  The stores, resolver, gateway and id
// generator are mandatory; graph and notifier may be nil, in which case
// the corresponding best-effort steps are skipped.
func NewEngine(inv InventoryStore, res ReservationStore, holds HoldStore, cust CustomerResolver, gw PaymentGateway, graph GraphSync, notifier Notifier, newID IDGenerator) *Engine {
	if inv == nil || res == nil || holds == nil || cust == nil || gw == nil || newID == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{
		inventory:    inv,
		reservations: res,
		holds:        holds,
		customers:    cust,
		gateway:      gw,
		graph:        graph,
		notifier:     notifier,
		newID:        newID,
		holdTTL:      HoldTTL,
	}
}

// BookingRequest carries the client-supplied fields for hold creation
// and reservation modification.
type BookingRequest struct {
	PropertyID uint64
	RoomID     uint64
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
}

// BookingResult pairs the reservation-shaped outcome of an operation
// with the resolved room and a human-readable message describing the
// financial side of what happened.
type BookingResult struct {
	ID         string
	PropertyID uint64
	RoomID     uint64
	RoomName   string
	Status     string
	Adults     int
	Children   int
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice float64
	Message    string
}

// InitiateHold -------------------------------------------------------

// InitiateHold reserves a room/date-range for the payment window.  On
// success the hold lives in the lock store for HoldTTL; nothing is
// written to the durable store.  Availability is checked against both
// the durable reservations and the unexpired holds for the room, with
// the whole check-then-write sequence serialized by a per-room lock so
// two concurrent callers cannot both pass the checks.
func (e *Engine) InitiateHold(ctx context.Context, userID uint64, req BookingRequest) (*BookingResult, error) {
	checkIn, checkOut := DateOnly(req.CheckIn), DateOnly(req.CheckOut)
	if err := validateDates(checkIn, checkOut); err != nil {
		return nil, err
	}

	customer, err := e.customers.FindCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	room, err := e.inventory.FindRoom(ctx, req.PropertyID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomAvailable {
		return nil, fmt.Errorf("%w: room is currently under maintenance or unavailable", ErrConflict)
	}
	if err := validateOccupancy(room, req.Adults, req.Children); err != nil {
		return nil, err
	}

	// Serialize hold creation for this room so the two overlap checks
	// and the hold write form one atomic step from the point of view of
	// competing callers.
	ok, err := e.holds.AcquireRoomLock(ctx, room.ID, roomLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire room lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: room is currently being reserved by another user, retry shortly", ErrConflict)
	}
	defer func() {
		if relErr := e.holds.ReleaseRoomLock(ctx, room.ID); relErr != nil {
			log.Printf("booking: release room lock %d: %v", room.ID, relErr)
		}
	}()

	if err := e.checkAvailability(ctx, room.ID, checkIn, checkOut, ""); err != nil {
		return nil, err
	}

	holdID, err := e.newID()
	if err != nil {
		return nil, fmt.Errorf("generate hold id: %w", err)
	}
	hold := &model.Hold{
		ID:        holdID,
		UserID:    customer.ID,
		RoomID:    room.ID,
		Adults:    req.Adults,
		Children:  req.Children,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Status:    model.StatusPendingPayment,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.holds.Put(ctx, hold, e.holdTTL); err != nil {
		return nil, fmt.Errorf("store hold: %w", err)
	}

	estimated := TotalPrice(room, checkIn, checkOut, req.Adults, req.Children)
	return &BookingResult{
		ID:         hold.ID,
		PropertyID: room.PropertyID,
		RoomID:     room.ID,
		RoomName:   room.Name,
		Status:     hold.Status,
		Adults:     hold.Adults,
		Children:   hold.Children,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: Round2(estimated),
		Message:    fmt.Sprintf("Room locked for %d minutes. Total to pay: €%.2f", int(e.holdTTL.Minutes()), estimated),
	}, nil
}

// ReleaseHold removes a pending hold.  Releasing a hold that has already
// expired or never existed is a silent no-op, so clients can retry the
// call freely.  Only the hold's owner may release it while it exists.
func (e *Engine) ReleaseHold(ctx context.Context, userID uint64, holdID string) error {
	hold, err := e.holds.Get(ctx, holdID)
	if err != nil {
		return fmt.Errorf("load hold: %w", err)
	}
	if hold == nil {
		return nil
	}
	if hold.UserID != userID {
		return fmt.Errorf("%w: not authorized to release this hold", ErrForbidden)
	}
	return e.holds.Delete(ctx, holdID)
}

// ConfirmPayment -----------------------------------------------------

// ConfirmPayment converts a pending hold into a durable CONFIRMED
// reservation.  Prices are recomputed from the room's current rates, so
// the charged amount may differ from the estimate shown at hold time.
// The charge happens before the reservation is persisted: a declined
// charge leaves the hold in place for retry and creates nothing; a
// crash after persistence leaves the hold to expire on its own, during
// which the durable overlap check keeps the room blocked.
func (e *Engine) ConfirmPayment(ctx context.Context, userID uint64, holdID string) (*BookingResult, error) {
	hold, err := e.holds.Get(ctx, holdID)
	if err != nil {
		return nil, fmt.Errorf("load hold: %w", err)
	}
	if hold == nil {
		return nil, fmt.Errorf("%w: reservation session expired, please search again", ErrState)
	}
	if hold.UserID != userID {
		return nil, fmt.Errorf("%w: not authorized to confirm this hold", ErrForbidden)
	}

	customer, err := e.customers.FindCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer.PaymentMethod == nil {
		return nil, fmt.Errorf("%w: no payment method found, please add one before confirming payment", ErrState)
	}

	// Re-resolve room and property: rates may have drifted since the
	// hold was created, and the room may have been pulled from service.
	room, err := e.inventory.FindRoomByID(ctx, hold.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != model.RoomAvailable {
		return nil, fmt.Errorf("%w: room is no longer available", ErrConflict)
	}
	property, err := e.inventory.FindPropertyByRoom(ctx, hold.RoomID)
	if err != nil {
		return nil, err
	}

	// The durable store is authoritative: reject if a confirmed
	// reservation appeared for this range while the hold was pending.
	overlaps, err := e.reservations.FindOverlapping(ctx, room.ID, hold.CheckIn, hold.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("overlap check: %w", err)
	}
	if len(overlaps) > 0 {
		return nil, fmt.Errorf("%w: room has been booked for these dates in the meantime", ErrConflict)
	}

	amount := TotalPrice(room, hold.CheckIn, hold.CheckOut, hold.Adults, hold.Children)
	if err := e.gateway.Charge(ctx, customer.PaymentMethod.GatewayToken, amount); err != nil {
		// Hold intentionally stays in the lock store so the customer can
		// retry with another card before the TTL elapses.
		return nil, fmt.Errorf("%w: payment declined by bank using the saved payment method", ErrState)
	}

	resID, err := e.newID()
	if err != nil {
		return nil, fmt.Errorf("generate reservation id: %w", err)
	}
	res := &model.Reservation{
		ID:        resID,
		UserID:    hold.UserID,
		RoomID:    hold.RoomID,
		Adults:    hold.Adults,
		Children:  hold.Children,
		CheckIn:   hold.CheckIn,
		CheckOut:  hold.CheckOut,
		Status:    model.StatusConfirmed,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.reservations.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("persist reservation: %w", err)
	}

	if e.graph != nil {
		edge := model.BookingEdge{
			ReservationID: res.ID,
			UserID:        res.UserID,
			PropertyID:    property.ID,
			CheckIn:       res.CheckIn,
			CheckOut:      res.CheckOut,
			TotalPrice:    amount,
		}
		if err := e.graph.UpsertBooking(ctx, edge); err != nil {
			log.Printf("booking: graph sync for reservation %s failed: %v", res.ID, err)
		}
	}
	if e.notifier != nil {
		e.notifier.BookingCreated(ctx, property.ManagerID, customer.ID, res.ID)
	}

	// Deleted last: if anything above crashed the hold simply expires.
	if err := e.holds.Delete(ctx, holdID); err != nil {
		log.Printf("booking: delete hold %s after confirmation: %v", holdID, err)
	}

	return &BookingResult{
		ID:         res.ID,
		PropertyID: property.ID,
		RoomID:     res.RoomID,
		RoomName:   room.Name,
		Status:     res.Status,
		Adults:     res.Adults,
		Children:   res.Children,
		CheckIn:    res.CheckIn,
		CheckOut:   res.CheckOut,
		TotalPrice: Round2(amount),
		Message:    fmt.Sprintf("Payment successful! €%.2f charged using card ending in %s", amount, customer.PaymentMethod.Last4Digits),
	}, nil
}

// Modify -------------------------------------------------------------

// Modify re-prices an existing reservation against a new room, date
// range or occupancy and settles the difference: an increase is charged
// up front and gates the update, a decrease is refunded best-effort.
// The target room must belong to the same property as the current one.
func (e *Engine) Modify(ctx context.Context, userID uint64, reservationID string, req BookingRequest) (*BookingResult, error) {
	checkIn, checkOut := DateOnly(req.CheckIn), DateOnly(req.CheckOut)
	if err := validateDates(checkIn, checkOut); err != nil {
		return nil, err
	}

	existing, err := e.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("%w: not authorized to modify this reservation", ErrForbidden)
	}
	if existing.Status == model.StatusCancelled {
		return nil, fmt.Errorf("%w: cannot modify a cancelled reservation", ErrState)
	}

	customer, err := e.customers.FindCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer.PaymentMethod == nil {
		return nil, fmt.Errorf("%w: no payment method on file to process price changes", ErrState)
	}

	currentRoom, err := e.inventory.FindRoomByID(ctx, existing.RoomID)
	if err != nil {
		return nil, err
	}
	property, err := e.inventory.FindPropertyByRoom(ctx, existing.RoomID)
	if err != nil {
		return nil, err
	}
	targetRoom, err := e.inventory.FindRoom(ctx, property.ID, req.RoomID)
	if err != nil {
		return nil, err
	}
	if targetRoom.ID != currentRoom.ID && targetRoom.Status != model.RoomAvailable {
		return nil, fmt.Errorf("%w: the selected new room is currently unavailable", ErrConflict)
	}
	if err := validateOccupancy(targetRoom, req.Adults, req.Children); err != nil {
		return nil, err
	}

	// Availability on the target room/range, ignoring the reservation
	// being moved.  Pending holds block a modification the same way
	// they block a fresh hold.
	if err := e.checkAvailability(ctx, targetRoom.ID, checkIn, checkOut, reservationID); err != nil {
		return nil, err
	}

	oldPrice := TotalPrice(currentRoom, existing.CheckIn, existing.CheckOut, existing.Adults, existing.Children)
	newPrice := TotalPrice(targetRoom, checkIn, checkOut, req.Adults, req.Children)
	diff := newPrice - oldPrice

	var message string
	switch {
	case diff > 0.01:
		if err := e.gateway.Charge(ctx, customer.PaymentMethod.GatewayToken, diff); err != nil {
			return nil, fmt.Errorf("%w: additional payment declined", ErrState)
		}
		message = fmt.Sprintf("Modified. Additional charge: €%.2f (card ending in %s)", diff, customer.PaymentMethod.Last4Digits)
	case diff < -0.01:
		if err := e.gateway.Refund(ctx, customer.PaymentMethod.GatewayToken, -diff); err != nil {
			log.Printf("booking: refund for modified reservation %s failed: %v", reservationID, err)
		}
		message = fmt.Sprintf("Modified. Refund processed: €%.2f (card ending in %s)", -diff, customer.PaymentMethod.Last4Digits)
	default:
		message = "Modified. No price change required."
	}

	existing.RoomID = targetRoom.ID
	existing.CheckIn = checkIn
	existing.CheckOut = checkOut
	existing.Adults = req.Adults
	existing.Children = req.Children
	if err := e.reservations.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("persist modification: %w", err)
	}

	if e.graph != nil {
		edge := model.BookingEdge{
			ReservationID: existing.ID,
			UserID:        existing.UserID,
			PropertyID:    property.ID,
			CheckIn:       existing.CheckIn,
			CheckOut:      existing.CheckOut,
			TotalPrice:    newPrice,
		}
		if err := e.graph.UpsertBooking(ctx, edge); err != nil {
			log.Printf("booking: graph sync for modified reservation %s failed: %v", existing.ID, err)
		}
	}
	if e.notifier != nil {
		e.notifier.BookingModified(ctx, property.ManagerID, customer.ID, existing.ID)
	}

	return &BookingResult{
		ID:         existing.ID,
		PropertyID: property.ID,
		RoomID:     existing.RoomID,
		RoomName:   targetRoom.Name,
		Status:     existing.Status,
		Adults:     existing.Adults,
		Children:   existing.Children,
		CheckIn:    existing.CheckIn,
		CheckOut:   existing.CheckOut,
		TotalPrice: Round2(newPrice),
		Message:    message,
	}, nil
}

// Cancel -------------------------------------------------------------

// Cancel refunds a confirmed future stay in full and marks the
// reservation CANCELLED, freeing the room for new holds.  The refund is
// best-effort: a gateway failure is logged and does not abort the
// cancellation.
func (e *Engine) Cancel(ctx context.Context, userID uint64, reservationID string) error {
	res, err := e.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.UserID != userID {
		return fmt.Errorf("%w: not authorized to cancel this reservation", ErrForbidden)
	}
	if res.Status != model.StatusConfirmed {
		return fmt.Errorf("%w: only confirmed reservations can be cancelled", ErrState)
	}
	if res.CheckIn.Before(DateOnly(time.Now())) {
		return fmt.Errorf("%w: cannot cancel past or ongoing reservations", ErrState)
	}

	customer, err := e.customers.FindCustomer(ctx, userID)
	if err != nil {
		return err
	}
	if customer.PaymentMethod == nil {
		return fmt.Errorf("%w: no payment method found to process the refund", ErrState)
	}

	room, err := e.inventory.FindRoomByID(ctx, res.RoomID)
	if err != nil {
		return err
	}
	property, err := e.inventory.FindPropertyByRoom(ctx, res.RoomID)
	if err != nil {
		return err
	}

	amount := TotalPrice(room, res.CheckIn, res.CheckOut, res.Adults, res.Children)
	if err := e.gateway.Refund(ctx, customer.PaymentMethod.GatewayToken, amount); err != nil {
		log.Printf("booking: refund for cancelled reservation %s failed: %v", reservationID, err)
	}

	if err := e.reservations.UpdateStatus(ctx, reservationID, model.StatusCancelled); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}

	if e.graph != nil {
		if err := e.graph.DeleteBooking(ctx, reservationID); err != nil {
			log.Printf("booking: graph delete for reservation %s failed: %v", reservationID, err)
		}
	}
	if e.notifier != nil {
		e.notifier.BookingCancelled(ctx, property.ManagerID, customer.ID, reservationID)
	}
	return nil
}

// ListForUser returns the caller's reservations, newest first, each
// paired with its current room pricing.
func (e *Engine) ListForUser(ctx context.Context, userID uint64) ([]BookingResult, error) {
	reservations, err := e.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResult, 0, len(reservations))
	for i := range reservations {
		res := &reservations[i]
		item := BookingResult{
			ID:       res.ID,
			RoomID:   res.RoomID,
			Status:   res.Status,
			Adults:   res.Adults,
			Children: res.Children,
			CheckIn:  res.CheckIn,
			CheckOut: res.CheckOut,
		}
		if room, err := e.inventory.FindRoomByID(ctx, res.RoomID); err == nil {
			item.RoomName = room.Name
			item.PropertyID = room.PropertyID
			item.TotalPrice = Round2(TotalPrice(room, res.CheckIn, res.CheckOut, res.Adults, res.Children))
		}
		out = append(out, item)
	}
	return out, nil
}

// helpers ------------------------------------------------------------

// checkAvailability runs both overlap checks for a room/date-range:
// the durable reservations (authoritative) and the unexpired holds from
// the per-room index.  excludeReservation skips the reservation being
// modified, empty for hold creation.
func (e *Engine) checkAvailability(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeReservation string) error {
	overlaps, err := e.reservations.FindOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return fmt.Errorf("overlap check: %w", err)
	}
	for i := range overlaps {
		if overlaps[i].ID != excludeReservation {
			return fmt.Errorf("%w: room is already booked for these dates", ErrConflict)
		}
	}

	holds, err := e.holds.ActiveByRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("hold scan: %w", err)
	}
	for i := range holds {
		if holds[i].Overlaps(checkIn, checkOut) {
			return fmt.Errorf("%w: room is currently being paid for by another user, try again in %d minutes", ErrConflict, int(e.holdTTL.Minutes()))
		}
	}
	return nil
}

func validateDates(checkIn, checkOut time.Time) error {
	if !checkIn.Before(checkOut) {
		return fmt.Errorf("%w: check-out date must be strictly after check-in date", ErrValidation)
	}
	if checkIn.Before(DateOnly(time.Now())) {
		return fmt.Errorf("%w: check-in date cannot be in the past", ErrValidation)
	}
	return nil
}

func validateOccupancy(room *model.Room, adults, children int) error {
	if adults < 1 {
		return fmt.Errorf("%w: at least 1 adult is required per reservation", ErrValidation)
	}
	if children < 0 {
		return fmt.Errorf("%w: children count cannot be negative", ErrValidation)
	}
	if adults > room.CapacityAdults {
		return fmt.Errorf("%w: too many adults, max allowed for this room: %d", ErrValidation, room.CapacityAdults)
	}
	if children > room.CapacityChildren {
		return fmt.Errorf("%w: too many children, max allowed for this room: %d", ErrValidation, room.CapacityChildren)
	}
	return nil
}
