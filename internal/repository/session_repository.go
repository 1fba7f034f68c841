package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
)

// SessionRepo provides access to the 'training_sessions' table. Rows are
// created by the agenda materializer in bulk, or one at a time by a
// coordinator. The only mutation after creation is the atomic seat
// decrement performed by ReserveSeatTx and row deletion.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionCols = "id,title,description,session_date,start_time,end_time,total_seats,available_seats,active,created_by,created_at"

func scanSession(row interface{ Scan(...any) error }) (model.TrainingSession, error) {
	var (
		s    model.TrainingSession
		date time.Time
	)
	err := row.Scan(&s.ID, &s.Title, &s.Description, &date, &s.StartTime, &s.EndTime,
		&s.TotalSeats, &s.AvailableSeats, &s.Active, &s.CreatedBy, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrSessionNotFound
	}
	if err != nil {
		return s, err
	}
	s.Date = date.Format("2006-01-02")
	return s, nil
}

// ListAll returns every session from any date, ordered by date and start
// time. The materializer needs the full set for duplicate detection and
// daily counting.
func (r *SessionRepo) ListAll(ctx context.Context) ([]model.TrainingSession, error) {
	return r.list(ctx, "SELECT "+sessionCols+" FROM training_sessions ORDER BY session_date, start_time")
}

// ListByMonth returns sessions whose date falls inside year/month.
func (r *SessionRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]model.TrainingSession, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	return r.list(ctx,
		"SELECT "+sessionCols+" FROM training_sessions WHERE session_date >= ? AND session_date < ? ORDER BY session_date, start_time",
		first.Format("2006-01-02"), next.Format("2006-01-02"))
}

// ListByDate returns the sessions of a single day.
func (r *SessionRepo) ListByDate(ctx context.Context, date string) ([]model.TrainingSession, error) {
	return r.list(ctx,
		"SELECT "+sessionCols+" FROM training_sessions WHERE session_date=? ORDER BY start_time", date)
}

func (r *SessionRepo) list(ctx context.Context, query string, args ...any) ([]model.TrainingSession, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TrainingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns a session by primary key.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.TrainingSession, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+sessionCols+" FROM training_sessions WHERE id=?", id)
	return scanSession(row)
}

// GetByDateStart returns the session materialized for a (date, start
// time) pair. ErrSessionNotFound means that slot was never opened for
// that day, which the booking service reports as "not yet open".
func (r *SessionRepo) GetByDateStart(ctx context.Context, date, start string) (model.TrainingSession, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+sessionCols+" FROM training_sessions WHERE session_date=? AND start_time=?", date, start)
	return scanSession(row)
}

// Create inserts a single session (direct coordinator creation). A
// duplicate (date, start time) pair is reported as ErrConflict via the
// unique key.
func (r *SessionRepo) Create(ctx context.Context, s *model.TrainingSession) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO training_sessions (title,description,session_date,start_time,end_time,total_seats,available_seats,active,created_by) VALUES (?,?,?,?,?,?,?,?,?)",
		s.Title, s.Description, s.Date, s.StartTime, s.EndTime,
		s.TotalSeats, s.AvailableSeats, s.Active, s.CreatedBy)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = got
	return nil
}

// CreateBulk inserts all staged sessions from a materializer plan in a
// single statement. Each row requires eight values; timestamps default
// in the DB. The unique (session_date, start_time) key re-validates the
// plan's duplicate detection against concurrent materializer runs, in
// which case the whole insert fails with ErrConflict and nothing is
// created.
func (r *SessionRepo) CreateBulk(ctx context.Context, staged []agenda.Staged, createdBy *uint64) error {
	if len(staged) == 0 {
		return nil
	}
	query := "INSERT INTO training_sessions (title,description,session_date,start_time,end_time,total_seats,available_seats,active,created_by) VALUES "
	args := make([]any, 0, len(staged)*9)
	for i, s := range staged {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?,?,?,?)"
		args = append(args, s.Title, nil, s.Date, s.StartTime, s.EndTime,
			s.TotalSeats, s.AvailableSeats, true, createdBy)
	}
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	return nil
}

// ReserveSeatTx atomically claims one seat inside the booking
// transaction. The conditional update is the whole concurrency story:
// two bookings racing for the last seat both run the UPDATE, the row
// lock serializes them, and the second one matches zero rows because
// available_seats already hit zero. The follow-up existence check
// distinguishes "sold out" from "no such session".
func (r *SessionRepo) ReserveSeatTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE training_sessions SET available_seats = available_seats - 1 WHERE id = ? AND active = 1 AND available_seats > 0",
		sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM training_sessions WHERE id=? AND active=1", sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	return ErrSessionFull
}

// Delete removes a session. Bookings cascade in the schema.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM training_sessions WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
