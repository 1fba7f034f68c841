package model

import "time"

// TrainingSession is a concrete dated training instance created by the
// agenda materializer (or directly by a coordinator).  Date is the
// calendar day as "YYYY-MM-DD"; StartTime/EndTime are "HH:MM:SS".
//
// Invariants:
//  0 <= AvailableSeats <= TotalSeats at all times.
//  At most one session exists per (Date, StartTime) pair; the table
//  carries a unique key on those columns.
type TrainingSession struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	TotalSeats     uint32    `json:"total_seats"`
	AvailableSeats uint32    `json:"available_seats"`
	Active         bool      `json:"active"`
	CreatedBy      *uint64   `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
