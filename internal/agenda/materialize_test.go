package agenda

import (
	"errors"
	"testing"
	"time"

	"github.com/ademateus/field-service-portal/internal/model"
)

func slot(start, end, desc string, seats uint32, active bool) model.SlotTemplate {
	s := model.SlotTemplate{StartTime: start, EndTime: end, DefaultSeats: seats, Active: active}
	if desc != "" {
		s.Description = &desc
	}
	return s
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		year  int
		month time.Month
		ok    bool
	}{
		{name: "valid", in: "2026-02", year: 2026, month: time.February, ok: true},
		{name: "valid december", in: "2025-12", year: 2025, month: time.December, ok: true},
		{name: "missing month", in: "2026", ok: false},
		{name: "month out of range", in: "2026-13", ok: false},
		{name: "garbage", in: "febrero", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := ParseMonth(tt.in)
			if !tt.ok {
				if !errors.Is(err, ErrInvalidMonth) {
					t.Fatalf("expected ErrInvalidMonth, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if year != tt.year || month != tt.month {
				t.Fatalf("expected %d-%v, got %d-%v", tt.year, tt.month, year, month)
			}
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{name: "short form", in: "09:00", out: "09:00:00", ok: true},
		{name: "long form", in: "14:30:00", out: "14:30:00", ok: true},
		{name: "hour out of range", in: "25:00", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "garbage", in: "morning", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeClock(tt.in)
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize %q: %v", tt.in, err)
			}
			if got != tt.out {
				t.Fatalf("expected %q, got %q", tt.out, got)
			}
		})
	}
}

func TestSessionTitle(t *testing.T) {
	withDesc := slot("09:00:00", "11:00:00", "Onboarding", 10, true)
	if got := SessionTitle(withDesc); got != "Training Onboarding" {
		t.Fatalf("expected title from description, got %q", got)
	}
	noDesc := slot("14:00:00", "16:00:00", "", 10, true)
	if got := SessionTitle(noDesc); got != "Training 14:00" {
		t.Fatalf("expected title from start time, got %q", got)
	}
}

func TestBusinessDays(t *testing.T) {
	// February 2026 starts on a Sunday and has 20 weekdays.
	days := BusinessDays(2026, time.February, nil)
	if len(days) != 20 {
		t.Fatalf("expected 20 business days, got %d", len(days))
	}
	if days[0] != "2026-02-02" {
		t.Fatalf("expected first business day 2026-02-02, got %s", days[0])
	}
	for _, d := range days {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			t.Fatalf("parse %q: %v", d, err)
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("weekend day %s in business days", d)
		}
	}

	blocked := map[string]bool{"2026-02-04": true}
	days = BusinessDays(2026, time.February, blocked)
	if len(days) != 19 {
		t.Fatalf("expected 19 days with one blocked, got %d", len(days))
	}
	for _, d := range days {
		if d == "2026-02-04" {
			t.Fatal("blocked date survived")
		}
	}
}

func TestBuildPlanFullMonth(t *testing.T) {
	slots := []model.SlotTemplate{
		slot("09:00:00", "11:00:00", "Morning class", 10, true),
		slot("14:00:00", "16:00:00", "", 8, true),
	}
	opts := Options{MaxPerDay: 3, DefaultSeats: 10}

	plan, err := BuildPlan("2026-02", slots, nil, nil, opts)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if len(plan.Staged) != 40 {
		t.Fatalf("expected 40 staged sessions (20 days x 2 slots), got %d", len(plan.Staged))
	}
	if plan.SkippedDuplicate != 0 || plan.SkippedLimit != 0 {
		t.Fatalf("expected no skips, got dup=%d limit=%d", plan.SkippedDuplicate, plan.SkippedLimit)
	}

	first := plan.Staged[0]
	if first.Date != "2026-02-02" || first.StartTime != "09:00:00" {
		t.Fatalf("unexpected first staged session: %+v", first)
	}
	if first.Title != "Training Morning class" {
		t.Fatalf("expected description title, got %q", first.Title)
	}
	if first.TotalSeats != 10 || first.AvailableSeats != 10 {
		t.Fatalf("expected 10/10 seats, got %d/%d", first.TotalSeats, first.AvailableSeats)
	}

	second := plan.Staged[1]
	if second.Title != "Training 14:00" {
		t.Fatalf("expected start-time title, got %q", second.Title)
	}
	if second.TotalSeats != 8 {
		t.Fatalf("expected slot seat count 8, got %d", second.TotalSeats)
	}
}

func TestBuildPlanRerunIsIdempotent(t *testing.T) {
	slots := []model.SlotTemplate{
		slot("09:00:00", "11:00:00", "", 10, true),
		slot("14:00:00", "16:00:00", "", 10, true),
	}
	opts := Options{MaxPerDay: 3, DefaultSeats: 10}

	first, err := BuildPlan("2026-02", slots, nil, nil, opts)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}

	existing := make([]model.TrainingSession, 0, len(first.Staged))
	for _, st := range first.Staged {
		existing = append(existing, model.TrainingSession{
			Date: st.Date, StartTime: st.StartTime,
		})
	}

	second, err := BuildPlan("2026-02", slots, existing, nil, opts)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !second.Empty() {
		t.Fatalf("expected nothing to create, got %d staged", len(second.Staged))
	}
	if second.SkippedDuplicate != 40 {
		t.Fatalf("expected 40 duplicates, got %d", second.SkippedDuplicate)
	}
}

func TestBuildPlanDailyLimit(t *testing.T) {
	slots := []model.SlotTemplate{slot("09:00:00", "11:00:00", "", 10, true)}
	// A manually created session already occupies 2026-02-02 at another
	// time; with a limit of one per day the slot is squeezed out there.
	existing := []model.TrainingSession{
		{Date: "2026-02-02", StartTime: "17:00:00"},
	}
	opts := Options{MaxPerDay: 1, DefaultSeats: 10}

	plan, err := BuildPlan("2026-02", slots, existing, nil, opts)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if len(plan.Staged) != 19 {
		t.Fatalf("expected 19 staged, got %d", len(plan.Staged))
	}
	if plan.SkippedLimit != 1 {
		t.Fatalf("expected 1 limit skip, got %d", plan.SkippedLimit)
	}
	for _, st := range plan.Staged {
		if st.Date == "2026-02-02" {
			t.Fatal("session staged on a date at its daily limit")
		}
	}
}

func TestBuildPlanBlockedDates(t *testing.T) {
	slots := []model.SlotTemplate{slot("09:00:00", "11:00:00", "", 10, true)}
	opts := Options{MaxPerDay: 3, DefaultSeats: 10}

	plan, err := BuildPlan("2026-02", slots, nil, []string{"2026-02-02", "2026-02-03"}, opts)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if len(plan.Staged) != 18 {
		t.Fatalf("expected 18 staged with two blocked dates, got %d", len(plan.Staged))
	}
}

func TestBuildPlanSeatFallback(t *testing.T) {
	slots := []model.SlotTemplate{slot("09:00:00", "11:00:00", "", 0, true)}
	opts := Options{MaxPerDay: 3, DefaultSeats: 12}

	plan, err := BuildPlan("2026-02", slots, nil, nil, opts)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if plan.Staged[0].TotalSeats != 12 {
		t.Fatalf("expected fallback seat count 12, got %d", plan.Staged[0].TotalSeats)
	}
}

func TestBuildPlanValidation(t *testing.T) {
	opts := Options{MaxPerDay: 3, DefaultSeats: 10}
	active := []model.SlotTemplate{slot("09:00:00", "11:00:00", "", 10, true)}

	if _, err := BuildPlan("not-a-month", active, nil, nil, opts); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}

	inactive := []model.SlotTemplate{slot("09:00:00", "11:00:00", "", 10, false)}
	if _, err := BuildPlan("2026-02", inactive, nil, nil, opts); !errors.Is(err, ErrNoActiveSlots) {
		t.Fatalf("expected ErrNoActiveSlots, got %v", err)
	}
	if _, err := BuildPlan("2026-02", nil, nil, nil, opts); !errors.Is(err, ErrNoActiveSlots) {
		t.Fatalf("expected ErrNoActiveSlots for empty slots, got %v", err)
	}

	four := []model.SlotTemplate{
		slot("08:00:00", "09:00:00", "", 10, true),
		slot("10:00:00", "11:00:00", "", 10, true),
		slot("13:00:00", "14:00:00", "", 10, true),
		slot("15:00:00", "16:00:00", "", 10, true),
	}
	if _, err := BuildPlan("2026-02", four, nil, nil, opts); !errors.Is(err, ErrTooManySlots) {
		t.Fatalf("expected ErrTooManySlots, got %v", err)
	}
}
