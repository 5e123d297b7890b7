// Package store implements the control-plane persistence layer
// (SPEC_FULL.md §6): the durable identifying-tuple <-> session_id mapping
// and the registered-library roster, backed by gorm.io/gorm over either an
// embedded glebarez/sqlite database (default, single-node) or
// jackc/pgx/v5-backed PostgreSQL (production), grounded on the teacher's
// pkg/controlplane/store package.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType selects the control-plane database backend.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig configures the embedded single-node backend.
type SQLiteConfig struct {
	Path string
}

// PostgresConfig configures the production backend.
type PostgresConfig struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the PostgreSQL connection string gorm's postgres driver and
// golang-migrate's postgres driver both accept.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	} else {
		dsn += " sslmode=disable"
	}
	return dsn
}

// Config selects and configures the control-plane database.
type Config struct {
	Type     DatabaseType
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// ApplyDefaults fills in zero-valued fields with gatefix's defaults.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}
	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "gatefix", "controlplane.db")
	}
	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 10
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 5
		}
	}
}
