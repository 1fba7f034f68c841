package service

import (
	"context"
	"database/sql"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
)

// Store is the MySQL-backed implementation of BookingStore and
// AgendaStore, composed from the repositories.
type Store struct {
	db         *sql.DB
	sessions   *repository.SessionRepo
	bookings   *repository.BookingRepo
	slots      *repository.SlotRepo
	exceptions *repository.ExceptionRepo
}

// NewStore builds a Store over one database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		sessions:   repository.NewSessionRepo(db),
		bookings:   repository.NewBookingRepo(db),
		slots:      repository.NewSlotRepo(db),
		exceptions: repository.NewExceptionRepo(db),
	}
}

// Reserve claims one seat and inserts the booking inside a single
// transaction. The conditional seat decrement runs first; if it reports
// the session missing or full, the transaction rolls back and no
// booking row is ever visible. The session is re-read inside the same
// transaction so the caller sees the authoritative post-decrement seat
// count.
func (s *Store) Reserve(ctx context.Context, sessionID, profileID uint64) (model.Booking, model.TrainingSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.sessions.ReserveSeatTx(ctx, tx, sessionID); err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}

	booking := model.Booking{SessionID: sessionID, ProfileID: profileID, Confirmed: true}
	if err := s.bookings.CreateTx(ctx, tx, &booking); err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}

	var sess model.TrainingSession
	if err := sessionByIDTx(ctx, tx, sessionID, &sess); err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Booking{}, model.TrainingSession{}, err
	}
	committed = true
	return booking, sess, nil
}

func sessionByIDTx(ctx context.Context, tx *sql.Tx, id uint64, out *model.TrainingSession) error {
	row := tx.QueryRowContext(ctx,
		"SELECT id,title,description,session_date,start_time,end_time,total_seats,available_seats,active,created_by,created_at FROM training_sessions WHERE id=?", id)
	var date sql.NullTime
	err := row.Scan(&out.ID, &out.Title, &out.Description, &date, &out.StartTime, &out.EndTime,
		&out.TotalSeats, &out.AvailableSeats, &out.Active, &out.CreatedBy, &out.CreatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if date.Valid {
		out.Date = date.Time.Format("2006-01-02")
	}
	return nil
}

func (s *Store) SessionByID(ctx context.Context, id uint64) (model.TrainingSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Store) SessionByDateStart(ctx context.Context, date, start string) (model.TrainingSession, error) {
	return s.sessions.GetByDateStart(ctx, date, start)
}

func (s *Store) ActiveSlots(ctx context.Context) ([]model.SlotTemplate, error) {
	return s.slots.ListActive(ctx)
}

func (s *Store) AllSessions(ctx context.Context) ([]model.TrainingSession, error) {
	return s.sessions.ListAll(ctx)
}

func (s *Store) BlockedDates(ctx context.Context) ([]string, error) {
	return s.exceptions.ListBlockedDates(ctx)
}

func (s *Store) InsertSessions(ctx context.Context, staged []agenda.Staged, createdBy *uint64) error {
	return s.sessions.CreateBulk(ctx, staged, createdBy)
}
