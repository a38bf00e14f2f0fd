package repository

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the slice of pgxpool the repository layer depends on:
// transactions for invite redemption, plain exec/query everywhere else.
// pgxmock satisfies it in tests.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnSettings describes how the shift store connects to PostgreSQL.
// SSLMode, MinConns and MaxConns come from the postgres section of the
// YAML config; zero values fall back to the pgxpool defaults.
type ConnSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

const (
	connectTimeout    = 5 * time.Second
	connIdleTime      = 30 * time.Second
	healthCheckPeriod = 30 * time.Second
)

// NewDatabase opens a connection pool for the shift store and verifies
// it with a ping before returning.
func NewDatabase(settings ConnSettings) (*pgxpool.Pool, error) {
	sslMode := settings.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dbURL := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		settings.User,
		settings.Password,
		net.JoinHostPort(settings.Host, settings.Port),
		settings.Name,
		sslMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if settings.MinConns > 0 {
		poolConfig.MinConns = settings.MinConns
	}
	if settings.MaxConns > 0 {
		poolConfig.MaxConns = settings.MaxConns
	}
	poolConfig.MaxConnIdleTime = connIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection to PostgreSQL: %w", err)
	}

	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL DB: %w", err)
	}

	return dbpool, nil
}
