package repository

import (
	"context"
	"database/sql"

	"github.com/ademateus/field-service-portal/internal/model"
)

// ProfileRepo provides access to the 'profiles' table. Profiles are the
// identity used throughout the portal: bookings and service calls
// reference profile ids, and the role stored here drives what each
// portal area shows.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileCols = "id,user_id,name,email,role,company,phone,tax_id,job_title,created_at,updated_at"

func scanProfile(row interface{ Scan(...any) error }) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Role,
		&p.Company, &p.Phone, &p.TaxID, &p.JobTitle, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrProfileNotFound
	}
	return p, err
}

// CreateTx inserts a profile inside the registration transaction.
func (r *ProfileRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Profile) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (user_id,name,email,role,company,phone,tax_id,job_title) VALUES (?,?,?,?,?,?,?,?)",
		p.UserID, p.Name, p.Email, p.Role, p.Company, p.Phone, p.TaxID, p.JobTitle)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByUserID returns the profile owned by an auth user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE user_id=? LIMIT 1", userID)
	return scanProfile(row)
}

// GetByID returns a profile by primary key.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=? LIMIT 1", id)
	return scanProfile(row)
}

// Update overwrites the editable profile fields (name, company, phone,
// tax id, job title). Email and role are never changed here.
func (r *ProfileRepo) Update(ctx context.Context, p model.Profile) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET name=?, company=?, phone=?, tax_id=?, job_title=? WHERE id=?",
		p.Name, p.Company, p.Phone, p.TaxID, p.JobTitle, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when nothing changed; confirm existence
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM profiles WHERE id=?", p.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrProfileNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// ListByRole returns all profiles with the given role ordered by name.
// Coordinators use it to pick a technician when assigning a call.
func (r *ProfileRepo) ListByRole(ctx context.Context, role string) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE role=? ORDER BY name", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
