package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/balasai14/multi-face-reg/internal/config"
	"github.com/balasai14/multi-face-reg/internal/constants"
	"github.com/balasai14/multi-face-reg/internal/database"
	"github.com/balasai14/multi-face-reg/internal/database/mariadb"
	"github.com/balasai14/multi-face-reg/internal/database/mock"
	"github.com/balasai14/multi-face-reg/internal/database/postgres"
)

// openRepository picks the identity storage backend from configuration.
// PostgreSQL wins when both are configured since it is the primary backend.
// The dev flag swaps in a volatile in-memory store for local experiments.
func openRepository(cfg *config.Config, dev bool) (database.IdentityRepository, func() error, error) {
	if dev {
		fmt.Println("Using in-memory backend (all data is lost on exit)")
		return mock.NewIdentityRepository(), func() error { return nil }, nil
	}

	if cfg.Database.URL != "" {
		// The descriptor column has a fixed vector dimension; a mismatched
		// DESCRIPTOR_DIM would make every insert fail.
		if cfg.Matching.DescriptorDim != constants.DefaultDescriptorDim {
			return nil, nil, fmt.Errorf(
				"DESCRIPTOR_DIM=%d does not match the vector(%d) schema column; migrate the schema first",
				cfg.Matching.DescriptorDim, constants.DefaultDescriptorDim)
		}
		fmt.Println("Connecting to PostgreSQL database...")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return postgres.NewIdentityRepository(pool), pool.Close, nil
	}

	if cfg.Database.MariaDBDSN != "" {
		fmt.Println("Connecting to MariaDB database...")
		pool, err := mariadb.NewPool(cfg.Database.MariaDBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		if err := pool.Migrate(context.Background()); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("failed to run MariaDB migrations: %w", err)
		}
		return mariadb.NewIdentityRepository(pool), pool.Close, nil
	}

	return nil, nil, errors.New("DATABASE_URL or MARIADB_DSN environment variable is required (or pass --dev)")
}
