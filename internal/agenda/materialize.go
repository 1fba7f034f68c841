// Package agenda turns recurring slot templates into concrete dated
// training sessions for a calendar month. Planning is pure: it never
// touches storage, so the same inputs always stage the same sessions.
package agenda

import (
	"errors"
	"fmt"
	"time"

	"github.com/ademateus/field-service-portal/internal/model"
)

// Validation errors reported before any staging happens.
var (
	ErrInvalidMonth  = errors.New("invalid month, expected YYYY-MM")
	ErrNoActiveSlots = errors.New("no active slot templates")
	ErrTooManySlots  = errors.New("active slot templates exceed the daily session limit")
)

// Options control materialization limits.
type Options struct {
	// MaxPerDay caps how many sessions may exist on a single date,
	// counting sessions that already exist. Must be >= 1.
	MaxPerDay int
	// DefaultSeats is used when a slot template has no seat count.
	DefaultSeats uint32
}

// Staged is a session the planner wants inserted. AvailableSeats always
// starts equal to TotalSeats.
type Staged struct {
	Title          string
	Date           string
	StartTime      string
	EndTime        string
	TotalSeats     uint32
	AvailableSeats uint32
}

// Plan is the outcome of expanding slot templates over a month.
type Plan struct {
	Year             int
	Month            time.Month
	Staged           []Staged
	SkippedDuplicate int
	SkippedLimit     int
}

// Empty reports whether the plan stages nothing, meaning the month is
// already fully open (or has no eligible days).
func (p *Plan) Empty() bool { return len(p.Staged) == 0 }

// ParseMonth parses a "YYYY-MM" month selector.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// NormalizeClock accepts "HH:MM" or "HH:MM:SS" and returns the
// "HH:MM:SS" form stored in TIME columns.
func NormalizeClock(s string) (string, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	return "", fmt.Errorf("invalid time of day: %q", s)
}

// ShortClock trims "HH:MM:SS" down to "HH:MM" for display.
func ShortClock(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// SessionTitle derives the staged session title from the slot template:
// the description when present, otherwise the start time.
func SessionTitle(slot model.SlotTemplate) string {
	if slot.Description != nil && *slot.Description != "" {
		return "Training " + *slot.Description
	}
	return "Training " + ShortClock(slot.StartTime)
}

// BusinessDays lists the "YYYY-MM-DD" dates of the month that fall on a
// weekday and are not in the blocked set.
func BusinessDays(year int, month time.Month, blocked map[string]bool) []string {
	var days []string
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		key := d.Format("2006-01-02")
		if blocked[key] {
			continue
		}
		days = append(days, key)
	}
	return days
}

// BuildPlan stages one session per active slot template for every
// business day of the month, skipping (date, start time) pairs that
// already exist and dates whose daily limit is exhausted. Existing
// sessions from any month count toward both checks. Slots are applied
// in input order, so earlier templates win the remaining capacity.
func BuildPlan(month string, slots []model.SlotTemplate, existing []model.TrainingSession, blocked []string, opts Options) (*Plan, error) {
	year, m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if opts.MaxPerDay < 1 {
		opts.MaxPerDay = 1
	}

	active := make([]model.SlotTemplate, 0, len(slots))
	for _, s := range slots {
		if s.Active {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoActiveSlots
	}
	if len(active) > opts.MaxPerDay {
		return nil, fmt.Errorf("%w: %d active, limit %d", ErrTooManySlots, len(active), opts.MaxPerDay)
	}

	taken := make(map[string]bool, len(existing))
	countByDay := make(map[string]int)
	for _, s := range existing {
		taken[s.Date+" "+s.StartTime] = true
		countByDay[s.Date]++
	}

	blockSet := make(map[string]bool, len(blocked))
	for _, d := range blocked {
		blockSet[d] = true
	}

	plan := &Plan{Year: year, Month: m}
	for _, date := range BusinessDays(year, m, blockSet) {
		remaining := opts.MaxPerDay - countByDay[date]
		for _, slot := range active {
			if remaining <= 0 {
				plan.SkippedLimit++
				continue
			}
			key := date + " " + slot.StartTime
			if taken[key] {
				plan.SkippedDuplicate++
				continue
			}
			seats := slot.DefaultSeats
			if seats == 0 {
				seats = opts.DefaultSeats
			}
			plan.Staged = append(plan.Staged, Staged{
				Title:          SessionTitle(slot),
				Date:           date,
				StartTime:      slot.StartTime,
				EndTime:        slot.EndTime,
				TotalSeats:     seats,
				AvailableSeats: seats,
			})
			taken[key] = true
			remaining--
		}
	}
	return plan, nil
}
