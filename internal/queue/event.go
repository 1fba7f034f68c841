// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// BookingCreatedEvent is published when a client books a seat in a
// training session. It contains enough information for downstream
// consumers to log or notify without querying the primary database.
type BookingCreatedEvent struct {
	EventID        string `json:"event_id"`
	BookingID      uint64 `json:"booking_id"`
	SessionID      uint64 `json:"session_id"`
	ProfileID      uint64 `json:"profile_id"`
	SessionTitle   string `json:"session_title"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	SeatsRemaining uint32 `json:"seats_remaining"`
	CreatedAt      string `json:"created_at"`
}
