package database

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed inserts a starting data set for local development: a coordinator
// account (coordinator@portal.local / coordinator) and the two standard
// training slots. Running it twice is harmless; existing rows are kept.
func Seed(ctx context.Context, log *zap.Logger, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email=?", "coordinator@portal.local").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("coordinator"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		res, err := db.ExecContext(ctx,
			"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
			"coordinator@portal.local", string(hash), "COORDINATOR")
		if err != nil {
			return err
		}
		uid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO profiles (user_id, name, email, role) VALUES (?,?,?,?)",
			uid, "Coordinator", "coordinator@portal.local", "COORDINATOR"); err != nil {
			return err
		}
		log.Info("seed: coordinator account created")
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM slot_templates").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO slot_templates (start_time, end_time, description, default_seats, active) VALUES
			 ('09:00:00','11:00:00','Morning class',10,1),
			 ('14:00:00','16:00:00','Afternoon class',10,1)`); err != nil {
			return err
		}
		log.Info("seed: default slot templates created")
	}
	return nil
}
