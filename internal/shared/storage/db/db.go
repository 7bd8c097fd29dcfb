package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx as database/sql driver
	"github.com/kelseyhightower/envconfig"
	_ "modernc.org/sqlite" // sqlite as database/sql driver

	"smartmail-backend/internal/shared/telemetry"
)

// Dialect names the SQL flavour a connection speaks.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const memoryPath = ":memory:"

// Options tunes the connection pool. Each field can be overridden from the
// environment with a DB_ prefix, e.g. DB_MAX_OPEN_CONNS.
type Options struct {
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `envconfig:"PING_TIMEOUT"`
}

var openDB = sql.Open

// DefaultServerOptions suits the long-running API process talking to Postgres.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultSQLiteOptions pins the pool to one connection; sqlite has a single
// writer.
func DefaultSQLiteOptions() Options {
	return Options{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
}

// DefaultMigrateOptions suits one-shot migration runs.
func DefaultMigrateOptions() Options {
	o := DefaultSQLiteOptions()
	o.ConnMaxIdleTime = 2 * time.Minute
	return o
}

// OptionsFromEnv applies DB_* overrides on top of defaults. An unparsable
// value is logged and the defaults are returned untouched.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	if err := envconfig.Process("DB", &opts); err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"error": err.Error()})
		return defaults
	}
	return opts
}

// Connect opens Postgres at databaseURL and pings it. The returned pool is
// meant to be shared.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	return open(ctx, "pgx", databaseURL, opts)
}

// ConnectSQLite opens the sqlite file at path, creating parent directories.
func ConnectSQLite(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return nil, errors.New("sqlite path is empty")
	case path != memoryPath:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	return open(ctx, "sqlite", path, opts)
}

func open(ctx context.Context, driver, dsn string, opts Options) (*sql.DB, error) {
	conn, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	opts = opts.withFallbacks()
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	telemetry.Info("db.connected", map[string]any{
		"driver":    driver,
		"max_open":  opts.MaxOpenConns,
		"max_idle":  opts.MaxIdleConns,
		"ping_ms":   opts.PingTimeout.Milliseconds(),
		"in_memory": dsn == memoryPath,
	})
	return conn, nil
}

// withFallbacks replaces non-positive limits with server defaults. A zero
// idle time means idle connections are never closed for age.
func (o Options) withFallbacks() Options {
	d := DefaultServerOptions()
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = d.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = d.MaxIdleConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if o.ConnMaxIdleTime < 0 {
		o.ConnMaxIdleTime = 0
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = d.PingTimeout
	}
	return o
}
