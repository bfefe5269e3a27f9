package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the slice of pgxpool the readiness probe depends on.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// NewPool opens the ledger connection pool and verifies connectivity with a
// bounded ping before handing it out. The settlement repositories share this
// pool; transactions never outlive maxLife.
func NewPool(ctx context.Context, connString string, maxConns int, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgBadConnString, err)
	}

	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = DefaultMinConnections
	cfg.MaxConnIdleTime = maxIdle
	cfg.MaxConnLifetime = maxLife

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgPoolCreate, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgPingFailed, err)
	}

	slog.Info(LogMsgLedgerConnected, "max_conns", cfg.MaxConns)
	return pool, nil
}
