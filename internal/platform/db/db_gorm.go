// Package db opens the gorm connection used by the postgres store backend.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config holds the Postgres connection settings. URL wins over the discrete fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Opener opens a gorm connection for a DSN. It exists so tests can replace the driver.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the connection string for cfg.
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// OpenDB validates the DSN and connects, retrying until connectTimeout elapses.
func OpenDB(cfg Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	// pgx parses both URL and key/value forms; fail early on a malformed DSN
	// instead of retrying for a minute.
	pc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database DSN: %w", err)
	}
	slog.Info("connecting to postgres", "host", pc.Host, "port", pc.Port, "database", pc.Database)

	return ConnectWithRetry(dsn, connectTimeout, retryInterval, PostgresOpener)
}

// PostgresOpener opens a gorm connection with the pgx-based postgres driver.
// Simple protocol keeps prepared statements off so the Supabase pooler
// (transaction mode) can be used.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout, interval time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", interval)
		time.Sleep(interval)
	}
}
