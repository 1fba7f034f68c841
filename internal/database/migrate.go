package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrateUp runs all pending SQL migrations from the migrations
// directory (golang-migrate). The DSN must carry the mysql:// scheme and
// multiStatements enabled, see MigrateDSN.
func MigrateUp(log *zap.Logger, dsn string) error {
	cwd, _ := os.Getwd()
	dirs := []string{
		filepath.Join(cwd, "migrations"),
		filepath.Join(cwd, "..", "migrations"),
	}
	var absDir string
	for _, d := range dirs {
		if _, err := os.Stat(d); err == nil {
			absDir, _ = filepath.Abs(d)
			break
		}
	}
	if absDir == "" {
		return fmt.Errorf("migrations dir not found (tried cwd and parent)")
	}
	sourceURL := "file://" + filepath.ToSlash(absDir)

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("migrate new: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("migrate: no pending migrations")
			return nil
		}
		return err
	}
	log.Info("migrate: up ok")
	return nil
}

// MigrateDSN builds the golang-migrate connection string for MySQL.
// multiStatements lets one migration file carry several CREATE TABLE
// statements.
func MigrateDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("mysql://%s@tcp(%s:%s)/%s?multiStatements=true", auth, host, port, name)
}
