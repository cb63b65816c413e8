package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/chronoflow/internal/config"
	"github.com/sakif/chronoflow/internal/repository"
	"github.com/sakif/chronoflow/internal/repository/mongo"
	"github.com/sakif/chronoflow/internal/repository/sqlite"
)

const connectTimeout = 10 * time.Second

// openStore connects to the backend named by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			dir := filepath.Dir(cfg.SQLitePath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		return sqlite.New(cfg.SQLitePath)

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
