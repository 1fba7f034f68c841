package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ademateus/field-service-portal/internal/model"
)

// BookingRepo provides access to the 'bookings' table. Bookings are
// inserted only through the booking service transaction, after
// SessionRepo.ReserveSeatTx has claimed the seat.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// CreateTx inserts a booking within the reservation transaction and
// populates the generated id and timestamps on the record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (session_id, profile_id, confirmed) VALUES (?,?,?)",
		b.SessionID, b.ProfileID, b.Confirmed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM bookings WHERE id=?", b.ID).Scan(&b.CreatedAt)
}

// GetByID returns a booking by primary key.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,session_id,profile_id,confirmed,present,created_at FROM bookings WHERE id=?",
		id).Scan(&b.ID, &b.SessionID, &b.ProfileID, &b.Confirmed, &b.Present, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return b, ErrBookingNotFound
	}
	return b, err
}

// SetPresence overwrites the present flag. Writing the same value twice
// is a no-op; attendance never touches seat counts.
func (r *BookingRepo) SetPresence(ctx context.Context, id uint64, present bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET present=? WHERE id=?", present, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrBookingNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// ClientBookingDetail is a booking joined with its session, shaped for
// the client portal listing.
type ClientBookingDetail struct {
	ID           uint64  `json:"id"`
	SessionID    uint64  `json:"session_id"`
	Confirmed    bool    `json:"confirmed"`
	Present      *bool   `json:"present,omitempty"`
	CreatedAt    string  `json:"created_at"`
	SessionTitle string  `json:"session_title"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
}

// ListByProfile returns the caller's bookings with session details,
// newest first.
func (r *BookingRepo) ListByProfile(ctx context.Context, profileID uint64) ([]ClientBookingDetail, error) {
	const q = `SELECT b.id, b.session_id, b.confirmed, b.present, b.created_at,
	                  s.title, s.session_date, s.start_time, s.end_time
	           FROM bookings b
	           JOIN training_sessions s ON s.id = b.session_id
	           WHERE b.profile_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ClientBookingDetail, 0)
	for rows.Next() {
		var (
			d         ClientBookingDetail
			createdAt time.Time
			date      time.Time
		)
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Confirmed, &d.Present, &createdAt,
			&d.SessionTitle, &date, &d.StartTime, &d.EndTime); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		d.Date = date.Format("2006-01-02")
		out = append(out, d)
	}
	return out, rows.Err()
}

// SessionBookingDetail is a booking joined with the booking profile,
// shaped for the coordinator's attendance list.
type SessionBookingDetail struct {
	ID        uint64  `json:"id"`
	ProfileID uint64  `json:"profile_id"`
	Confirmed bool    `json:"confirmed"`
	Present   *bool   `json:"present,omitempty"`
	CreatedAt string  `json:"created_at"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Company   *string `json:"company,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ListBySession returns every booking of a session with the profile
// details a coordinator needs for the attendance sheet.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID uint64) ([]SessionBookingDetail, error) {
	const q = `SELECT b.id, b.profile_id, b.confirmed, b.present, b.created_at,
	                  p.name, p.email, p.company, p.phone
	           FROM bookings b
	           JOIN profiles p ON p.id = b.profile_id
	           WHERE b.session_id = ?
	           ORDER BY b.created_at`
	rows, err := r.DB.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionBookingDetail, 0)
	for rows.Next() {
		var (
			d         SessionBookingDetail
			createdAt time.Time
		)
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.Confirmed, &d.Present, &createdAt,
			&d.Name, &d.Email, &d.Company, &d.Phone); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListRecent returns bookings created within the given window, newest
// first. The coordinator dashboard shows these as fresh activity.
func (r *BookingRepo) ListRecent(ctx context.Context, since time.Time) ([]SessionBookingDetail, error) {
	const q = `SELECT b.id, b.profile_id, b.confirmed, b.present, b.created_at,
	                  p.name, p.email, p.company, p.phone
	           FROM bookings b
	           JOIN profiles p ON p.id = b.profile_id
	           WHERE b.created_at > ?
	           ORDER BY b.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionBookingDetail, 0)
	for rows.Next() {
		var (
			d         SessionBookingDetail
			createdAt time.Time
		)
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.Confirmed, &d.Present, &createdAt,
			&d.Name, &d.Email, &d.Company, &d.Phone); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	return out, rows.Err()
}
