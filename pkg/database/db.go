// Package database opens the GORM connection for the configured driver.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// Connect opens DB_DRIVER/DB_DSN, sizes the pool and pings.
func Connect(ctx context.Context) (*gorm.DB, error) {
	return Open(ctx, config.DatabaseDriver(), config.DatabaseDSN())
}

// Open opens driver with dsn.
func Open(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  slowQueryLogger{threshold: 200 * time.Millisecond},
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer; avoids "database is locked" under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// Ping checks the connection; the gRPC health watcher uses it.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// slowQueryLogger sends GORM errors and slow queries to the app logger and
// drops everything else.
type slowQueryLogger struct {
	threshold time.Duration
}

func (l slowQueryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }
func (l slowQueryLogger) Info(context.Context, string, ...interface{})     {}
func (l slowQueryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	logger.WithCtx(ctx).Warn("gorm: " + fmt.Sprintf(msg, args...))
}
func (l slowQueryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	logger.WithCtx(ctx).Error("gorm: " + fmt.Sprintf(msg, args...))
}

func (l slowQueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.WithCtx(ctx).Warn("gorm: query failed", "sql", sql, "rows", rows, "elapsed", elapsed.String(), "error", err)
	case elapsed > l.threshold:
		sql, rows := fc()
		logger.WithCtx(ctx).Warn("gorm: slow query", "sql", sql, "rows", rows, "elapsed", elapsed.String())
	}
}
