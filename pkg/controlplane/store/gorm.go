package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coriolisfix/gatefix/pkg/controlplane/models"
)

// Store wraps a *gorm.DB scoped to the control-plane schema.
type Store struct {
	db *gorm.DB
}

// Open opens the control-plane database described by cfg, running schema
// migrations (AutoMigrate for SQLite, golang-migrate for PostgreSQL, per
// SPEC_FULL.md §6) before returning.
func Open(cfg Config) (*Store, error) {
	cfg.ApplyDefaults()

	switch cfg.Type {
	case DatabaseTypeSQLite:
		return openSQLite(cfg.SQLite)
	case DatabaseTypePostgres:
		return openPostgres(cfg.Postgres)
	default:
		return nil, fmt.Errorf("store: unknown database type %q", cfg.Type)
	}
}

func openSQLite(cfg SQLiteConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, fmt.Errorf("store: automigrate sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

func openPostgres(cfg PostgresConfig) (*Store, error) {
	dsn := cfg.DSN()

	if err := runPostgresMigrations(dsn); err != nil {
		return nil, fmt.Errorf("store: run postgres migrations: %w", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	return &Store{db: db}, nil
}

// Health pings the underlying connection, the probe pkg/api's readiness
// handler calls.
func (s *Store) Health() error {
	var sqlDB *sql.DB
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
