// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrSessionFull signals that a booking lost
// the race for the last available seat.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or delete cannot be
// performed because of conflicting state, such as creating a
// session whose (date, start time) pair already exists. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSlotNotFound is returned when a slot template id does not exist.
var ErrSlotNotFound = errors.New("slot template not found")

// ErrSessionNotFound is returned when a training session id does not exist.
var ErrSessionNotFound = errors.New("training session not found")

// ErrSessionFull is returned by the seat reservation when
// available_seats is already zero. The booking must not be inserted.
var ErrSessionFull = errors.New("training session fully booked")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrProfileNotFound is returned when no profile row exists for the
// requested user or profile id.
var ErrProfileNotFound = errors.New("profile not found")

// ErrCallNotFound is returned when a service call id does not exist.
var ErrCallNotFound = errors.New("service call not found")
