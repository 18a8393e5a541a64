package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/identity"
	"github.com/kozaktomas/face-attendance/internal/identity/postgres"
)

// newIdentityStore selects the identity store backend from the configuration.
// DATABASE_URL set means PostgreSQL with pgvector; otherwise the JSON file
// store. The returned cleanup function closes the backend.
func newIdentityStore(cfg *config.Config) (identity.Store, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&postgres.PoolConfig{
			URL:          cfg.Database.URL,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := pool.Migrate(context.Background()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating identity schema: %w", err)
		}
		fmt.Println("Using PostgreSQL identity store")
		return postgres.NewStore(pool), func() { pool.Close() }, nil
	}

	store, err := identity.NewFileStore(cfg.Store.FaceDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening identity database %s: %w", cfg.Store.FaceDBPath, err)
	}
	return store, func() {}, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
