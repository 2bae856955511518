package database

import (
	"fmt"
	"time"

	pkgLogger "github.com/sjperalta/modular-erp-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the connection pool
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	Verbose      bool
}

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string, opts Options) (*gorm.DB, error) {
	logLevel := logger.Warn
	if opts.Verbose {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 50
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
