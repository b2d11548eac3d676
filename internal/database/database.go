package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/eion/usersvc/internal/config"
)

// Open connects to the configured database and verifies the connection.
// The returned *bun.DB owns the connection pool; close it on shutdown.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.Driver {
	case config.DriverPostgres:
		db = openPostgres(cfg.Postgres)
	case config.DriverSQLite:
		var err error
		db, err = openSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db.AddQueryHook(NewQueryHook(logger, cfg.SlowQueryThreshold()))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func openPostgres(cfg config.PostgresConfig) *bun.DB {
	maxConnections := cfg.MaxOpenConnections
	if maxConnections <= 0 {
		maxConnections = 10
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN()),
		pgdriver.WithReadTimeout(time.Duration(cfg.ReadTimeout)*time.Second),
		pgdriver.WithWriteTimeout(time.Duration(cfg.WriteTimeout)*time.Second),
	))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	return bun.NewDB(sqldb, pgdialect.New())
}

func openSQLite(cfg config.SQLiteConfig) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// each connection to ":memory:" is its own database
	if cfg.Path == ":memory:" {
		sqldb.SetMaxOpenConns(1)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
