package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// DSN accepts postgres URLs or keyword strings, SQLAlchemy style URLs
	// ("postgresql+asyncpg://...", "sqlite:///./app.db") and sqlite "file:" DSNs.
	DSN             string
	LogSQL          bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func OpenGorm(cfg Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DSN)
	if err != nil {
		return nil, err
	}

	lvl := logger.Silent
	if cfg.LogSQL {
		lvl = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}

	pool, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	pool, err := gdb.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty database url")
	}
	if strings.HasPrefix(dsn, "file:") {
		return sqlite.Open(dsn), nil
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		// keyword/value form: "host=localhost user=app dbname=app"
		return postgresDialector(dsn)
	}
	// SQLAlchemy URLs carry the async driver after a '+'.
	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch scheme {
	case "postgres", "postgresql":
		return postgresDialector(scheme + "://" + rest)
	case "sqlite", "sqlite3":
		// sqlite:///rel.db is relative, sqlite:////abs.db is absolute.
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			return nil, fmt.Errorf("sqlite url without a path")
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unsupported database url scheme %q", scheme)
}

func postgresDialector(dsn string) (gorm.Dialector, error) {
	pgxCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*pgxCfg)}), nil
}
