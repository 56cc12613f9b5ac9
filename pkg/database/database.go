package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juliog922/chatlink-v2/pkg/config"
	"github.com/juliog922/chatlink-v2/pkg/logger"
)

func Connect(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MaxConnLifetime = cfg.MaxLifetime
	pc.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(ctx, pc)
}

// WaitReady pings the pool until it answers or attempts run out. The
// caller may proceed either way; schema creation will surface a real
// connectivity problem.
func WaitReady(ctx context.Context, pool *pgxpool.Pool, attempts int) bool {
	for i := 0; i < attempts; i++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("postgres ready")
			return true
		} else {
			logger.Warn("postgres not ready yet", "error", err)
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
	return false
}

// EnsureSchema creates the tables the server owns if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id    SERIAL PRIMARY KEY,
			phone TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			name  TEXT,
			role  TEXT NOT NULL CHECK (role IN ('admin', 'user'))
		)`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, schema)
	return err
}
