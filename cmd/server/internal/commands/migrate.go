package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/logger"
	postgresstore "github.com/imovia/imovia/internal/store/postgres"
)

// MigrateCmd applies pending database migrations. It waits for the
// database to accept connections first, so it can run as an init step
// alongside a database that is still starting.
type MigrateCmd struct {
	ConnString string        `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	WaitFor    time.Duration `help:"how long to wait for the database to become reachable" default:"60s"`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	logger.Setup(globals.Debug)
	ctx := context.Background()

	if c.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--conn-string or POSTGRES_CONNECTION_STRING)")
	}

	pool, err := c.waitForPool(ctx)
	if err != nil {
		return fmt.Errorf("database never became reachable: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

func (c *MigrateCmd) waitForPool(ctx context.Context) (*pgxpool.Pool, error) {
	connect := func() (*pgxpool.Pool, error) {
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString: c.ConnString,
		})
		if err != nil {
			log.Debug().Err(err).Msg("Database not reachable yet, retrying")
			return nil, err
		}
		return pool, nil
	}

	return backoff.Retry(ctx, connect,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.WaitFor),
	)
}
