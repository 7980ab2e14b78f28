package storage

import (
	"fmt"
	"time"

	"dealership_api/internal/sales"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolOptions tunes the database/sql pool. Zero values keep the driver defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the database selected by driver ("postgres" or "sqlite").
// SQLite is always limited to one open connection.
func Open(driver, dsn string, pool PoolOptions, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
		// SQLite allows a single writer; extra connections only trade queueing
		// for "database table is locked" errors.
		pool.MaxOpenConns = 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return db, nil
}

// gorm messages go through zap at error level; slow queries are reported past one second.
func newGormLogger(logger *zap.Logger) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates the tables backing the dealership entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&sales.Vehicle{},
		&sales.VehicleExpense{},
		&sales.Client{},
		&sales.Sale{},
		&sales.OperatingExpense{},
		&sales.Salesperson{},
	)
}
