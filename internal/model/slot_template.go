package model

import "time"

// SlotTemplate represents a recurring daily time window that the agenda
// materializer expands into concrete training sessions.  Templates carry
// no date; they describe "every business day at 09:00–11:00" style slots.
// Times are stored as "HH:MM:SS" strings matching the MySQL TIME column.
//
// Invariant: StartTime < EndTime (enforced at creation).
type SlotTemplate struct {
	ID           uint64    `json:"id"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Description  *string   `json:"description,omitempty"`
	DefaultSeats uint32    `json:"default_seats"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
