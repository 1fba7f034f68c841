package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ademateus/field-service-portal/internal/model"
)

// ExceptionRepo provides access to the 'schedule_exceptions' table.
// Blocked dates feed the agenda materializer; removing a block only
// affects future runs.
type ExceptionRepo struct{ DB *sql.DB }

func NewExceptionRepo(db *sql.DB) *ExceptionRepo { return &ExceptionRepo{DB: db} }

// List returns all exceptions ordered by date.
func (r *ExceptionRepo) List(ctx context.Context) ([]model.ScheduleException, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,exception_date,blocked,reason,created_by,created_at FROM schedule_exceptions ORDER BY exception_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ScheduleException, 0)
	for rows.Next() {
		var (
			e    model.ScheduleException
			date time.Time
		)
		if err := rows.Scan(&e.ID, &date, &e.Blocked, &e.Reason, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = date.Format("2006-01-02")
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListBlockedDates returns the "YYYY-MM-DD" dates currently blocked.
func (r *ExceptionRepo) ListBlockedDates(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT exception_date FROM schedule_exceptions WHERE blocked=1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		out = append(out, date.Format("2006-01-02"))
	}
	return out, rows.Err()
}

// Create inserts an exception. One row per date; a second insert for the
// same date is reported as ErrConflict.
func (r *ExceptionRepo) Create(ctx context.Context, e *model.ScheduleException) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO schedule_exceptions (exception_date,blocked,reason,created_by) VALUES (?,?,?,?)",
		e.Date, e.Blocked, e.Reason, e.CreatedBy)
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
	e.ID = uint64(id)
	return nil
}

// Delete removes an exception by id.
func (r *ExceptionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM schedule_exceptions WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
