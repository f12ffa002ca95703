package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// idleTimeout releases connections a finished scoring batch no longer needs.
const idleTimeout = 5 * time.Minute

// NewPool connects to the database and verifies the connection with a ping.
// The pool serves two very different workloads: long-running scoring queries
// over the MIMIC source tables, and short reads from the HTTP API. MinConns
// keeps warm connections around for the latter.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnIdleTime = idleTimeout
	cfg.ConnConfig.RuntimeParams["application_name"] = "sepsis3"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
