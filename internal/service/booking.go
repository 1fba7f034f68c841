// Package service holds the orchestration between repositories, the
// change feed and the message broker for the portal's two core flows:
// booking seats and materializing the monthly agenda.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/queue"
	"github.com/ademateus/field-service-portal/internal/repository"
	"github.com/ademateus/field-service-portal/internal/stream"
)

// ErrNotYetOpen is returned when a booking targets a date/time for
// which no session has been materialized. Distinct from
// repository.ErrSessionFull so clients are told to pick another time
// rather than "sold out".
var ErrNotYetOpen = errors.New("no training session open for this date and time")

// ErrInvalidDate is returned when a booking request carries a malformed
// date or time of day.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// BookingStore is the persistence seam for the booking service. Reserve
// must be atomic: it claims one seat and inserts the booking as a single
// indivisible operation, so two racing calls on the last seat produce
// exactly one booking. The MySQL implementation lives in Store.
type BookingStore interface {
	Reserve(ctx context.Context, sessionID, profileID uint64) (model.Booking, model.TrainingSession, error)
	SessionByID(ctx context.Context, id uint64) (model.TrainingSession, error)
	SessionByDateStart(ctx context.Context, date, start string) (model.TrainingSession, error)
}

// BookingService books seats and fans out the side effects (change feed
// and broker event). Both side channels are best-effort; the booking is
// committed before either runs.
type BookingService struct {
	store BookingStore
	feed  *stream.Hub
	log   *zap.Logger
	// publish is swappable in tests; nil disables broker events.
	publish func(context.Context, *zap.Logger, queue.BookingCreatedEvent) error
}

// NewBookingService wires a booking service. feed may be nil.
func NewBookingService(store BookingStore, feed *stream.Hub, log *zap.Logger) *BookingService {
	return &BookingService{
		store:   store,
		feed:    feed,
		log:     log,
		publish: queue.PublishBookingCreated,
	}
}

// WithPublisher overrides the broker publish function (tests, or nil to
// disable).
func (s *BookingService) WithPublisher(fn func(context.Context, *zap.Logger, queue.BookingCreatedEvent) error) *BookingService {
	s.publish = fn
	return s
}

// BookSession reserves one seat in a materialized session for the given
// profile. On success the returned session reflects the decremented
// seat count read back from storage, never a locally computed value.
func (s *BookingService) BookSession(ctx context.Context, sessionID, profileID uint64) (model.Booking, model.TrainingSession, error) {
	booking, sess, err := s.store.Reserve(ctx, sessionID, profileID)
	if err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}
	s.afterBooking(ctx, booking, sess)
	return booking, sess, nil
}

// BookByTime books the session materialized for a (date, start time)
// pair. When no session exists for that pair the caller gets
// ErrNotYetOpen: the slot may exist as a template, but only
// materialized sessions can be booked.
func (s *BookingService) BookByTime(ctx context.Context, date, start string, profileID uint64) (model.Booking, model.TrainingSession, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return model.Booking{}, model.TrainingSession{}, ErrInvalidDate
	}
	clock, err := agenda.NormalizeClock(start)
	if err != nil {
		return model.Booking{}, model.TrainingSession{}, ErrInvalidDate
	}
	sess, err := s.store.SessionByDateStart(ctx, date, clock)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return model.Booking{}, model.TrainingSession{}, ErrNotYetOpen
		}
		return model.Booking{}, model.TrainingSession{}, err
	}
	return s.BookSession(ctx, sess.ID, profileID)
}

func (s *BookingService) afterBooking(ctx context.Context, b model.Booking, sess model.TrainingSession) {
	if s.feed != nil {
		s.feed.Publish(stream.NewChangeEvent("bookings", "INSERT", b))
		s.feed.Publish(stream.NewChangeEvent("training_sessions", "UPDATE", sess))
	}
	if s.publish != nil {
		ev := queue.BookingCreatedEvent{
			EventID:        uuid.NewString(),
			BookingID:      b.ID,
			SessionID:      sess.ID,
			ProfileID:      b.ProfileID,
			SessionTitle:   sess.Title,
			Date:           sess.Date,
			StartTime:      sess.StartTime,
			EndTime:        sess.EndTime,
			SeatsRemaining: sess.AvailableSeats,
			CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := s.publish(ctx, s.log, ev); err != nil {
			s.log.Warn("booking event publish failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
		}
	}
}
