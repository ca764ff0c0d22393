package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tinymahjong/internal/logging"
)

// New opens the postgres connection and migrates the move log tables.
// SQL statements are logged only when debug logging is on.
func New(dsn string) (*gorm.DB, error) {
	level := logger.Warn
	if logging.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open move log: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(&Table{}, &Move{}); err != nil {
		return nil, fmt.Errorf("migrate move log: %w", err)
	}
	return db, nil
}
