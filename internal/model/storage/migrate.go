package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// runMigrations applies the schema over its own connection, migrate closes it when done.
func runMigrations(driverName, dsn string) error {
	migrateDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return errors.Wrap(err, "open migration database")
	}

	var driver database.Driver
	switch driverName {
	case sqliteDriver:
		driver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	case postgresDriver:
		driver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
	default:
		err = errors.Errorf("unknown driver %s", driverName)
	}
	if err != nil {
		_ = migrateDB.Close()
		return errors.Wrap(err, "create migration driver")
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return errors.Wrap(err, "create iofs source")
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}
