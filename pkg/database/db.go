package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"vertice/pkg/utils"
)

// Memory opens a private in-memory database, held on a single connection.
const Memory = ":memory:"

const defaultBusyTimeout = 5 * time.Second

type Config struct {
	Path string
	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration
	// MaxOpenConns <= 0 leaves the pool unbounded.
	MaxOpenConns int
}

// DefaultConfig is ~/.vertice/data.db.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Path:        filepath.Join(home, ".vertice", "data.db"),
		BusyTimeout: defaultBusyTimeout,
	}
}

// FromConfig maps the database section of the app config, filling blanks
// from DefaultConfig.
func FromConfig(c utils.DatabaseConfig) Config {
	cfg := DefaultConfig()
	if c.Path != "" {
		cfg.Path = c.Path
	}
	if c.BusyTimeout > 0 {
		cfg.BusyTimeout = c.BusyTimeout
	}
	cfg.MaxOpenConns = c.MaxOpenConns
	return cfg
}

// DSN carries the pragmas as go-sqlite3 connection parameters, so every
// pooled connection gets them, not just the first.
func (c Config) DSN() string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.FormatInt(c.busyTimeout().Milliseconds(), 10))
	if !c.inMemory() {
		q.Set("_journal_mode", "WAL")
	}
	return c.Path + "?" + q.Encode()
}

func (c Config) inMemory() bool { return c.Path == Memory }

func (c Config) busyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return defaultBusyTimeout
	}
	return c.BusyTimeout
}

func EnsureDataDir(cfg Config) error {
	if cfg.inMemory() {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
}

func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	switch {
	case cfg.inMemory():
		// each connection would see its own empty database
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.Path, err)
	}
	return db, nil
}

func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		zap.L().Fatal("failed to open db", zap.String("path", cfg.Path), zap.Error(err))
	}
	return db
}
