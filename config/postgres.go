package config

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yoockh/interviewpilot/internal/models"
)

func OpenPostgres(cfg *Config) (*gorm.DB, error) {
	if cfg.PostgresURI == "" {
		return nil, errors.New("POSTGRES_URI is not set")
	}

	gcfg := &gorm.Config{}
	if cfg.Env == "production" {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresURI), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection Pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// MigratePostgres creates or updates the interview and question tables.
func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(&models.Interview{}, &models.Turn{}, &models.Question{})
}
