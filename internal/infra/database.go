package infra

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection pool. Schema is owned by the SQL files
// under migrations/ (see RunMigrations); AutoMigrate is never used against
// Postgres. TranslateError lets services recognise FK and unique violations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations applies every pending migration from migrationsPath using
// golang-migrate over a dedicated lib/pq connection.
func RunMigrations(databaseURL, migrationsPath string) error {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}
	defer conn.Close()

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrations: driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("migrations: schema up to date")
			return nil
		}
		return fmt.Errorf("migrations: up: %w", err)
	}

	version, _, _ := m.Version()
	log.Info().Uint("version", version).Msg("migrations: applied")
	return nil
}
