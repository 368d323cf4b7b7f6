package database

import (
	"fmt"

	"teampulse-api/internal/model"
	"teampulse-api/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Connect opens the primary datastore, applies pool settings and runs
// migrations for the core schema. The returned handle is the only writer
// in the process; callers own its lifecycle and must Close it on shutdown.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg.Primary, cfg.Server.Env, "core.")
	if err != nil {
		return nil, fmt.Errorf("primary store: %w", err)
	}

	// Run migrations
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Project{},
		&model.Task{},
		&model.OKR{},
		&model.KPI{},
	); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return db, nil
}

// ConnectReporting opens the externally-owned reporting datastore.
// The handle is used strictly for SELECTs against pre-built materialized
// views; no migrations run and nothing is ever written through it.
func ConnectReporting(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg.Reports, cfg.Server.Env, "")
	if err != nil {
		return nil, fmt.Errorf("reporting store: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(cfg config.DatabaseConfig, env, tablePrefix string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := gormlogger.Error
	if env == "development" {
		logLevel = gormlogger.Info
	}

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  cfg.URL,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	}
	if tablePrefix != "" {
		gormConfig.NamingStrategy = schema.NamingStrategy{TablePrefix: tablePrefix}
	}

	// Open connection
	db, err := gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		return nil, err
	}

	// Get generic database object SQL
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Set connection pool settings from config
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Warm-up: fail fast on misconfiguration instead of on first request
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
