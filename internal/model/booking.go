package model

import "time"

// Booking reserves one seat in a training session for a profile.  The
// seat decrement on the session happens atomically with the insert (see
// repository.SessionRepo.ReserveSeatTx); a booking row never exists for
// a seat that was not decremented.
//
// Present is nil until a coordinator records attendance.
type Booking struct {
	ID        uint64    `json:"id"`
	SessionID uint64    `json:"session_id"`
	ProfileID uint64    `json:"profile_id"`
	Confirmed bool      `json:"confirmed"`
	Present   *bool     `json:"present,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
