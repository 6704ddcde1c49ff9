package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salon-queue-backend/config"
	"salon-queue-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates the schema and the engine-level constraints. It is called
// from Init and from tests that run against their own throwaway databases.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ServiceType{},
		&model.Client{},
		&model.ServiceEvent{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// A client may have at most one open service event. The claim made by
	// CallNext relies on this index to reject a second concurrent claim for
	// the same client. Partial indexes work on both sqlite and postgres.
	ddl := "CREATE UNIQUE INDEX IF NOT EXISTS idx_service_events_open_client " +
		"ON service_events (client_id) WHERE finished_at IS NULL"
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create open-event index: %w", err)
	}
	return nil
}
