package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stecc88/roommatch/internal/config"
)

// NewDB opens the database selected by cfg.DB.Driver and migrates the schema.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.Log.Level == "debug" {
		level = logger.Info // log SQL queries
	}

	switch cfg.DB.Driver {
	case "mysql":
		return Open(mysql.Open(cfg.DB.DSN), level)
	case "sqlite":
		return OpenSQLite(cfg.DB.SQLitePath, level)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}

// Open connects through the given dialector and migrates the schema.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := connect(dialector, level)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database (a file path or a "file:...?mode=memory"
// URI) and migrates the schema. SQLite allows a single writer, so the pool is
// capped at one connection; this also keeps shared in-memory databases alive.
func OpenSQLite(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := connect(sqlite.Open(dsn), level)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// connect opens the gorm handle.
//
// TranslateError is always on: MatchRepository relies on
// gorm.ErrDuplicatedKey to detect a concurrently created match.
func connect(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return db, nil
}

// Migrate keeps the schema in sync with the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
