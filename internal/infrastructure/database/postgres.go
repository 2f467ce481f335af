package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/inventario/internal/config"
	"github.com/sangkips/inventario/internal/infrastructure/repository"
)

// NewPostgresDB opens a PostgreSQL connection pool. SQL statements are
// logged only in debug mode.
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig, debug bool, log logrus.FieldLogger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get underlying sql.DB")
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}

	log.WithFields(logrus.Fields{"host": cfg.Host, "database": cfg.Name}).Info("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate creates or updates the inventory tables
func AutoMigrate(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	log.Info("database migrations completed")
	return nil
}
