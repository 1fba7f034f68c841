package model

import "time"

// Service call status values.  A call moves OPEN -> IN_PROGRESS ->
// FINISHED; coordinators may cancel at any point before FINISHED.
const (
	CallStatusOpen       = "OPEN"
	CallStatusInProgress = "IN_PROGRESS"
	CallStatusFinished   = "FINISHED"
	CallStatusCancelled  = "CANCELLED"
)

// ValidCallStatus reports whether s is a known service call status.
func ValidCallStatus(s string) bool {
	switch s {
	case CallStatusOpen, CallStatusInProgress, CallStatusFinished, CallStatusCancelled:
		return true
	}
	return false
}

// ServiceCall is a maintenance request opened by a client against their
// time-clock or access-control equipment.  A coordinator assigns a
// technician and optionally a visit date/time; the technician drives the
// status forward and records completion notes and the signature
// reference captured on site.
type ServiceCall struct {
	ID            uint64     `json:"id"`
	ClientID      uint64     `json:"client_id"`
	TechnicianID  *uint64    `json:"technician_id,omitempty"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	Address       *string    `json:"address,omitempty"`
	ScheduledDate *string    `json:"scheduled_date,omitempty"`
	ScheduledTime *string    `json:"scheduled_time,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	SignatureRef  *string    `json:"signature_ref,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
