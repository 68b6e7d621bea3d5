// Package booking implements the reservation lifecycle engine: hold
// creation, payment confirmation, modification and cancellation.  The
// engine owns every booking-state invariant and coordinates the durable
// reservation store, the ephemeral lock store, the payment gateway and
// the best-effort graph/notification side channels.
package booking

import "errors"

// Sentinel errors classifying every failure the engine can surface.
// Callers wrap them with %w and classify with errors.Is; handlers
// translate them into HTTP statuses.
var (
	// ErrValidation marks malformed or out-of-range input: bad dates,
	// negative occupancy, over-capacity.  Raised before any store
	// access, never after a side effect.  Maps to HTTP 400.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks an unavailable room: an overlapping durable
	// reservation, an overlapping pending hold, or a target room whose
	// status is not available.  Raised after read-only checks only.
	// Maps to HTTP 409.
	ErrConflict = errors.New("conflict")

	// ErrState marks an operation attempted in the wrong lifecycle
	// state: expired hold, missing payment method, declined payment,
	// already-cancelled reservation, cancelling a past stay.  Maps to
	// HTTP 422.
	ErrState = errors.New("invalid state")

	// ErrForbidden marks a caller that does not own the hold or
	// reservation it is acting on.  Maps to HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an unknown property, room, reservation or user
	// id.  Maps to HTTP 404.
	ErrNotFound = errors.New("not found")
)
