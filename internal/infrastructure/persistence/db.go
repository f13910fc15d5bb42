package persistence

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database and migrates the schema
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Printf("[MEALS] Connected to %s database", driver)
	return db, nil
}

// Migrate creates or updates the meal_entries table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&mealEntryRecord{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
