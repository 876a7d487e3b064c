package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"auditdesk/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {

	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if _, ok := poolConfig.ConnConfig.RuntimeParams["search_path"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["search_path"] = config.DatabaseSchema
	}

	poolConfig.MaxConnIdleTime = 15 * time.Minute
	poolConfig.MaxConnLifetime = 45 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema and tables if they do not exist. It is safe to
// run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schemaName string) error {
	stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s; SET search_path TO %s;\n%s", schemaName, schemaName, schema)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	// The acquired connection goes back to the pool; reset its search path.
	if _, err := conn.Exec(ctx, "RESET search_path"); err != nil {
		return fmt.Errorf("reset search path: %w", err)
	}

	return nil
}
