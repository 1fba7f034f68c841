package model

import "time"

// ScheduleException marks a calendar day the materializer must treat
// specially.  A blocked date produces no sessions, same as a weekend.
// Date is "YYYY-MM-DD".
type ScheduleException struct {
	ID        uint64    `json:"id"`
	Date      string    `json:"date"`
	Blocked   bool      `json:"blocked"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedBy *uint64   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
