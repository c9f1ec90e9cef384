// Package postgres persists accounts and player save slots using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fable-engine/fable/internal/config"
)

// connectTimeout bounds the initial reachability check in NewPool.
const connectTimeout = 5 * time.Second

// Pool owns the pgx connection pool and hands out the repositories built
// on it.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg, applies its pool
// sizing, and verifies reachability before returning.
//
// Postcondition: Returns a Pool whose Accounts and Saves repositories are
// ready for queries, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Accounts returns the account repository backed by this pool.
func (p *Pool) Accounts() *AccountRepository {
	return NewAccountRepository(p.pool)
}

// Saves returns the save-slot repository backed by this pool.
func (p *Pool) Saves() *SaveRepository {
	return NewSaveRepository(p.pool)
}

// Health checks that the database is reachable within the given timeout.
// The server's keepalive loop calls this periodically; a failure degrades
// the save endpoints without stopping play.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
//
// Postcondition: The pool and its repositories are no longer usable.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
