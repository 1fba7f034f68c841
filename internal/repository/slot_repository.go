package repository

import (
	"context"
	"database/sql"

	"github.com/ademateus/field-service-portal/internal/model"
)

// SlotRepo provides CRUD access to the 'slot_templates' table. Slots are
// pure configuration: changing or deleting one only affects future
// materializer runs, never sessions that already exist.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

const slotCols = "id,start_time,end_time,description,default_seats,active,created_at"

func scanSlot(row interface{ Scan(...any) error }) (model.SlotTemplate, error) {
	var s model.SlotTemplate
	err := row.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Description,
		&s.DefaultSeats, &s.Active, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrSlotNotFound
	}
	return s, err
}

// List returns every slot template ordered by start time.
func (r *SlotRepo) List(ctx context.Context) ([]model.SlotTemplate, error) {
	return r.list(ctx, "SELECT "+slotCols+" FROM slot_templates ORDER BY start_time")
}

// ListActive returns only active templates, ordered by start time. This
// ordering is the stable input order the materializer relies on.
func (r *SlotRepo) ListActive(ctx context.Context) ([]model.SlotTemplate, error) {
	return r.list(ctx, "SELECT "+slotCols+" FROM slot_templates WHERE active=1 ORDER BY start_time")
}

func (r *SlotRepo) list(ctx context.Context, query string) ([]model.SlotTemplate, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SlotTemplate, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a slot template and returns it with the generated id.
func (r *SlotRepo) Create(ctx context.Context, s *model.SlotTemplate) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO slot_templates (start_time,end_time,description,default_seats,active) VALUES (?,?,?,?,?)",
		s.StartTime, s.EndTime, s.Description, s.DefaultSeats, s.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	row := r.DB.QueryRowContext(ctx, "SELECT "+slotCols+" FROM slot_templates WHERE id=?", s.ID)
	got, err := scanSlot(row)
	if err != nil {
		return err
	}
	*s = got
	return nil
}

// SetActive toggles the active flag.
func (r *SlotRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE slot_templates SET active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	return r.checkFound(ctx, res, id)
}

// UpdateSeats changes the default seat count handed to new sessions.
func (r *SlotRepo) UpdateSeats(ctx context.Context, id uint64, seats uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE slot_templates SET default_seats=? WHERE id=?", seats, id)
	if err != nil {
		return err
	}
	return r.checkFound(ctx, res, id)
}

// Delete removes a slot template.
func (r *SlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM slot_templates WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *SlotRepo) checkFound(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM slot_templates WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrSlotNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
