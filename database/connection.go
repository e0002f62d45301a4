package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uib-ub/snomedct-transform/utils"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// GetPool returns a singleton connection pool for the application
func GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		utils.LoadEnv()
		connStr, err := utils.GetDatabaseURL()
		if err != nil {
			poolErr = err
			return
		}

		pool, poolErr = pgxpool.New(ctx, connStr)
		if poolErr != nil {
			poolErr = fmt.Errorf("unable to create connection pool: %w", poolErr)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			poolErr = fmt.Errorf("unable to ping database: %w", err)
		}
	})

	return pool, poolErr
}
