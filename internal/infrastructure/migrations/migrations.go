package migrations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/db"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Up applies every pending migration for dialect to db.
// The caller keeps ownership of db.
func Up(conn *sql.DB, dialect string, logger *logrus.Logger) error {
	src, err := iofs.New(db.Migrations, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case DialectPostgres:
		driver, err = pgmigrate.WithInstance(conn, &pgmigrate.Config{})
	case DialectSQLite:
		driver, err = sqlitemigrate.WithInstance(conn, &sqlitemigrate.Config{})
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.WithField("dialect", dialect).Info("running migrations...")
	}
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		if logger != nil {
			logger.Info("no migrations to run")
		}
		return nil
	}
	return err
}
