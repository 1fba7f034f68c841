package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
)

type fakeAgendaStore struct {
	slots    []model.SlotTemplate
	sessions []model.TrainingSession
	blocked  []string
	inserted [][]agenda.Staged
}

func (f *fakeAgendaStore) ActiveSlots(ctx context.Context) ([]model.SlotTemplate, error) {
	var out []model.SlotTemplate
	for _, s := range f.slots {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAgendaStore) AllSessions(ctx context.Context) ([]model.TrainingSession, error) {
	return f.sessions, nil
}

func (f *fakeAgendaStore) BlockedDates(ctx context.Context) ([]string, error) {
	return f.blocked, nil
}

func (f *fakeAgendaStore) InsertSessions(ctx context.Context, staged []agenda.Staged, createdBy *uint64) error {
	f.inserted = append(f.inserted, staged)
	for _, st := range staged {
		f.sessions = append(f.sessions, model.TrainingSession{
			Title: st.Title, Date: st.Date,
			StartTime: st.StartTime, EndTime: st.EndTime,
			TotalSeats: st.TotalSeats, AvailableSeats: st.AvailableSeats,
			Active: true,
		})
	}
	return nil
}

func activeSlot(start, end string) model.SlotTemplate {
	return model.SlotTemplate{StartTime: start, EndTime: end, DefaultSeats: 10, Active: true}
}

func newTestAgendaService(store *fakeAgendaStore) *AgendaService {
	opts := agenda.Options{MaxPerDay: 3, DefaultSeats: 10}
	return NewAgendaService(store, opts, nil, zap.NewNop())
}

func TestMaterializeOpensMonth(t *testing.T) {
	store := &fakeAgendaStore{
		slots: []model.SlotTemplate{
			activeSlot("09:00:00", "11:00:00"),
			activeSlot("14:00:00", "16:00:00"),
		},
	}
	svc := newTestAgendaService(store)

	res, err := svc.Materialize(context.Background(), "2026-02", nil)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if res.Created != 40 {
		t.Fatalf("expected 40 created, got %d", res.Created)
	}
	if res.SkippedDuplicate != 0 || res.SkippedLimit != 0 {
		t.Fatalf("expected no skips, got %+v", res)
	}
	if len(store.inserted) != 1 || len(store.inserted[0]) != 40 {
		t.Fatalf("expected one bulk insert of 40 rows")
	}
}

func TestMaterializeRerunCreatesNothing(t *testing.T) {
	store := &fakeAgendaStore{
		slots: []model.SlotTemplate{
			activeSlot("09:00:00", "11:00:00"),
			activeSlot("14:00:00", "16:00:00"),
		},
	}
	svc := newTestAgendaService(store)

	if _, err := svc.Materialize(context.Background(), "2026-02", nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := svc.Materialize(context.Background(), "2026-02", nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !res.Nothing() {
		t.Fatalf("expected nothing to create, got %d", res.Created)
	}
	if res.SkippedDuplicate != 40 {
		t.Fatalf("expected 40 duplicates, got %d", res.SkippedDuplicate)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("second run must not insert, got %d inserts", len(store.inserted))
	}
}

func TestMaterializeHonorsBlockedDates(t *testing.T) {
	store := &fakeAgendaStore{
		slots:   []model.SlotTemplate{activeSlot("09:00:00", "11:00:00")},
		blocked: []string{"2026-02-02"},
	}
	svc := newTestAgendaService(store)

	res, err := svc.Materialize(context.Background(), "2026-02", nil)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if res.Created != 19 {
		t.Fatalf("expected 19 created with one blocked date, got %d", res.Created)
	}
	for _, st := range store.inserted[0] {
		if st.Date == "2026-02-02" {
			t.Fatal("session created on a blocked date")
		}
	}
}

func TestMaterializeValidation(t *testing.T) {
	svc := newTestAgendaService(&fakeAgendaStore{})
	if _, err := svc.Materialize(context.Background(), "2026-02", nil); !errors.Is(err, agenda.ErrNoActiveSlots) {
		t.Fatalf("expected ErrNoActiveSlots, got %v", err)
	}

	store := &fakeAgendaStore{slots: []model.SlotTemplate{activeSlot("09:00:00", "11:00:00")}}
	svc = newTestAgendaService(store)
	if _, err := svc.Materialize(context.Background(), "2026/02", nil); !errors.Is(err, agenda.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Fatal("validation failure must not insert")
	}
}
