package storage

import (
	"fmt"
	"strings"

	"dream-league-engine/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database. sqlite runs on the pure-Go
// modernc driver so it needs no cgo; it is meant for local runs and tests.
func Open(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage: empty DSN for driver %q", driver)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.New(sqlite.Config{
			DSN:        dsn,
			DriverName: "sqlite",
		})
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}

	if strings.EqualFold(driver, DriverSQLite) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// One writer at a time; sqlite has no row locks.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the engine tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.Team{},
		&models.Tournament{},
		&models.Creator{},
	); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}
