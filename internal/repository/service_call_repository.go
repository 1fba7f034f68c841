package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ademateus/field-service-portal/internal/model"
)

// ServiceCallRepo provides access to the 'service_calls' table. Each
// portal role sees a different slice: clients their own calls,
// technicians their assignments, coordinators everything.
type ServiceCallRepo struct{ DB *sql.DB }

func NewServiceCallRepo(db *sql.DB) *ServiceCallRepo { return &ServiceCallRepo{DB: db} }

const callCols = "id,client_id,technician_id,title,description,status,priority,address,scheduled_date,scheduled_time,notes,signature_ref,finished_at,created_at,updated_at"

func scanCall(row interface{ Scan(...any) error }) (model.ServiceCall, error) {
	var (
		c     model.ServiceCall
		sdate sql.NullTime
	)
	err := row.Scan(&c.ID, &c.ClientID, &c.TechnicianID, &c.Title, &c.Description,
		&c.Status, &c.Priority, &c.Address, &sdate, &c.ScheduledTime,
		&c.Notes, &c.SignatureRef, &c.FinishedAt, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrCallNotFound
	}
	if err != nil {
		return c, err
	}
	if sdate.Valid {
		d := sdate.Time.Format("2006-01-02")
		c.ScheduledDate = &d
	}
	return c, nil
}

// Create inserts a new call in OPEN status.
func (r *ServiceCallRepo) Create(ctx context.Context, c *model.ServiceCall) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO service_calls (client_id,title,description,priority,address) VALUES (?,?,?,?,?)",
		c.ClientID, c.Title, c.Description, c.Priority, c.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = got
	return nil
}

// GetByID returns a call by primary key.
func (r *ServiceCallRepo) GetByID(ctx context.Context, id uint64) (model.ServiceCall, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+callCols+" FROM service_calls WHERE id=?", id)
	return scanCall(row)
}

// ListForClient returns the calls a client opened, newest first.
func (r *ServiceCallRepo) ListForClient(ctx context.Context, clientID uint64) ([]model.ServiceCall, error) {
	return r.list(ctx, "SELECT "+callCols+" FROM service_calls WHERE client_id=? ORDER BY created_at DESC", clientID)
}

// ListForTechnician returns the calls assigned to a technician, newest first.
func (r *ServiceCallRepo) ListForTechnician(ctx context.Context, technicianID uint64) ([]model.ServiceCall, error) {
	return r.list(ctx, "SELECT "+callCols+" FROM service_calls WHERE technician_id=? ORDER BY created_at DESC", technicianID)
}

// ListAll returns every call, newest first (coordinator view).
func (r *ServiceCallRepo) ListAll(ctx context.Context) ([]model.ServiceCall, error) {
	return r.list(ctx, "SELECT "+callCols+" FROM service_calls ORDER BY created_at DESC")
}

func (r *ServiceCallRepo) list(ctx context.Context, query string, args ...any) ([]model.ServiceCall, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ServiceCall, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Assign sets the technician and optional visit date/time. An OPEN call
// moves to IN_PROGRESS; reassignment keeps whatever status the call has.
func (r *ServiceCallRepo) Assign(ctx context.Context, id, technicianID uint64, date, clock *string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE service_calls SET technician_id=?, scheduled_date=?, scheduled_time=?, status=IF(status='OPEN','IN_PROGRESS',status) WHERE id=?",
		technicianID, date, clock, id)
	if err != nil {
		return err
	}
	return r.checkFound(ctx, res, id)
}

// UpdateStatus moves a call through its lifecycle. Finishing stamps
// finished_at and records the technician's notes and the signature
// reference captured on site.
func (r *ServiceCallRepo) UpdateStatus(ctx context.Context, id uint64, status string, notes, signatureRef *string) error {
	var (
		res sql.Result
		err error
	)
	if status == model.CallStatusFinished {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE service_calls SET status=?, notes=COALESCE(?, notes), signature_ref=COALESCE(?, signature_ref), finished_at=? WHERE id=?",
			status, notes, signatureRef, time.Now().UTC(), id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE service_calls SET status=?, notes=COALESCE(?, notes) WHERE id=?",
			status, notes, id)
	}
	if err != nil {
		return err
	}
	return r.checkFound(ctx, res, id)
}

func (r *ServiceCallRepo) checkFound(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM service_calls WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrCallNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
