package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Krish-Depani/mold-tracker/config"
)

const connectAttempts = 10

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func NewPostgresClient(ctx context.Context, dsn string, debug bool) (*gorm.DB, error) {
	var lastErr error
	for i := range connectAttempts {
		pgClient, err := gorm.Open(postgres.Open(dsn), gormConfig(debug))
		if err == nil {
			sqlDB, err := pgClient.DB()
			if err == nil {
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxIdleTime(5 * time.Minute)
				logrus.Info("Connected to Postgres")
				return pgClient, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}
		logrus.WithError(lastErr).Warnf("Postgres connection attempt %d failed", i+1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, errors.Wrapf(lastErr, "connect postgres after %d attempts", connectAttempts)
}

// NewSQLiteClient opens a SQLite database. ":memory:" is accepted for tests.
func NewSQLiteClient(path string, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps an in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Open connects to the database selected by env.
func Open(ctx context.Context, env *config.Env) (*gorm.DB, error) {
	if env.DBDriver == "sqlite" {
		return NewSQLiteClient(env.DBPath, env.IsDevelopment())
	}
	return NewPostgresClient(ctx, env.PostgresDSN(), env.IsDevelopment())
}
