package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
)

// fakeBookingStore reserves seats under a mutex, mirroring the
// atomicity the MySQL store gets from its conditional UPDATE.
type fakeBookingStore struct {
	mu       sync.Mutex
	sessions map[uint64]*model.TrainingSession
	bookings []model.Booking
	nextID   uint64
}

func newFakeBookingStore(sessions ...model.TrainingSession) *fakeBookingStore {
	f := &fakeBookingStore{sessions: make(map[uint64]*model.TrainingSession)}
	for i := range sessions {
		s := sessions[i]
		f.sessions[s.ID] = &s
	}
	return f
}

func (f *fakeBookingStore) Reserve(ctx context.Context, sessionID, profileID uint64) (model.Booking, model.TrainingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[sessionID]
	if !ok {
		return model.Booking{}, model.TrainingSession{}, repository.ErrSessionNotFound
	}
	if !sess.Active || sess.AvailableSeats == 0 {
		return model.Booking{}, model.TrainingSession{}, repository.ErrSessionFull
	}
	sess.AvailableSeats--
	f.nextID++
	b := model.Booking{ID: f.nextID, SessionID: sessionID, ProfileID: profileID, Confirmed: true}
	f.bookings = append(f.bookings, b)
	return b, *sess, nil
}

func (f *fakeBookingStore) SessionByID(ctx context.Context, id uint64) (model.TrainingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return *s, nil
	}
	return model.TrainingSession{}, repository.ErrSessionNotFound
}

func (f *fakeBookingStore) SessionByDateStart(ctx context.Context, date, start string) (model.TrainingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Date == date && s.StartTime == start {
			return *s, nil
		}
	}
	return model.TrainingSession{}, repository.ErrSessionNotFound
}

func testSession(id uint64, seats uint32) model.TrainingSession {
	return model.TrainingSession{
		ID:             id,
		Title:          "Training 09:00",
		Date:           "2026-02-02",
		StartTime:      "09:00:00",
		EndTime:        "11:00:00",
		TotalSeats:     seats,
		AvailableSeats: seats,
		Active:         true,
	}
}

func newTestBookingService(store BookingStore) *BookingService {
	return NewBookingService(store, nil, zap.NewNop()).WithPublisher(nil)
}

func TestBookSessionDecrementsSeat(t *testing.T) {
	store := newFakeBookingStore(testSession(1, 2))
	svc := newTestBookingService(store)

	booking, sess, err := svc.BookSession(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("book session: %v", err)
	}
	if booking.ProfileID != 42 || booking.SessionID != 1 {
		t.Fatalf("unexpected booking: %+v", booking)
	}
	if !booking.Confirmed {
		t.Fatal("expected booking to be confirmed")
	}
	if sess.AvailableSeats != 1 {
		t.Fatalf("expected 1 seat left, got %d", sess.AvailableSeats)
	}
}

func TestBookSessionFull(t *testing.T) {
	store := newFakeBookingStore(testSession(1, 1))
	svc := newTestBookingService(store)

	if _, _, err := svc.BookSession(context.Background(), 1, 1); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, _, err := svc.BookSession(context.Background(), 1, 2)
	if !errors.Is(err, repository.ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
}

func TestBookSessionNotFound(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	_, _, err := svc.BookSession(context.Background(), 99, 1)
	if !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBookByTime(t *testing.T) {
	store := newFakeBookingStore(testSession(1, 3))
	svc := newTestBookingService(store)

	// Short clock form must resolve to the stored HH:MM:SS start.
	booking, sess, err := svc.BookByTime(context.Background(), "2026-02-02", "09:00", 7)
	if err != nil {
		t.Fatalf("book by time: %v", err)
	}
	if booking.SessionID != 1 {
		t.Fatalf("expected session 1, got %d", booking.SessionID)
	}
	if sess.AvailableSeats != 2 {
		t.Fatalf("expected 2 seats left, got %d", sess.AvailableSeats)
	}
}

func TestBookByTimeNotYetOpen(t *testing.T) {
	store := newFakeBookingStore(testSession(1, 3))
	svc := newTestBookingService(store)

	_, _, err := svc.BookByTime(context.Background(), "2026-02-03", "09:00", 7)
	if !errors.Is(err, ErrNotYetOpen) {
		t.Fatalf("expected ErrNotYetOpen, got %v", err)
	}
}

func TestBookByTimeInvalidInput(t *testing.T) {
	store := newFakeBookingStore(testSession(1, 3))
	svc := newTestBookingService(store)

	tests := []struct {
		name  string
		date  string
		start string
	}{
		{name: "bad date", date: "02/02/2026", start: "09:00"},
		{name: "empty date", date: "", start: "09:00"},
		{name: "bad time", date: "2026-02-02", start: "9am"},
		{name: "empty time", date: "2026-02-02", start: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.BookByTime(context.Background(), tt.date, tt.start, 7)
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("expected ErrInvalidDate, got %v", err)
			}
		})
	}
}

func TestConcurrentBookingNeverOversells(t *testing.T) {
	const seats = 5
	const callers = 20

	store := newFakeBookingStore(testSession(1, seats))
	svc := newTestBookingService(store)

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(profile uint64) {
			defer wg.Done()
			_, _, err := svc.BookSession(context.Background(), 1, profile)
			errs <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(errs)

	won, full := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, repository.ErrSessionFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != seats {
		t.Fatalf("expected exactly %d successful bookings, got %d", seats, won)
	}
	if full != callers-seats {
		t.Fatalf("expected %d full rejections, got %d", callers-seats, full)
	}

	sess, err := store.SessionByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if sess.AvailableSeats != 0 {
		t.Fatalf("expected 0 seats left, got %d", sess.AvailableSeats)
	}
	if len(store.bookings) != seats {
		t.Fatalf("expected %d booking rows, got %d", seats, len(store.bookings))
	}
}
