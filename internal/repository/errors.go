// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to act on a resource owned by someone else, while
// ErrNotCustomer signals that a booking-capable account was required
// but the id resolved to a manager.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a property that still has confirmed reservations. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a property, room, reservation, review
// or user lookup matches no row. Handlers should translate this into
// an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrNotCustomer is returned by customer lookups when the account
// exists but is not a customer. The reservation engine requires a
// customer capability; handlers translate this into HTTP 403.
var ErrNotCustomer = errors.New("account is not a customer")
