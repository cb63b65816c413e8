package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/chronoflow/internal/config"
	"github.com/sakif/chronoflow/internal/metrics"
	"github.com/sakif/chronoflow/internal/repository"
	"github.com/sakif/chronoflow/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the due-event poller",
		Long: `Start the HTTP API and the background poller that reports events whose
date and time match the current second.

The server shuts down gracefully on SIGINT/SIGTERM: in-flight requests are
drained, the poller is stopped and the store connection is closed.

Examples:
  # MongoDB on localhost (default)
  server serve

  # Embedded SQLite store on a custom port
  STORE_DRIVER=sqlite DB_PATH=/var/lib/chronoflow/app.db server serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default: $HOST or 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: $PORT or 5000)")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)
	metrics.Init(Version, cfg.Store.Driver)

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("store connected", slog.String("driver", cfg.Store.Driver))

	srv, err := prepareServer(ctx, cfg, store, logger)
	if err != nil {
		if cerr := store.Close(ctx); cerr != nil {
			logger.Error("closing store failed", slog.String("error", cerr.Error()))
		}
		return err
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	return srv.Start()
}

// prepareServer creates indexes before any request is served. The unique
// index on users.email is what makes concurrent signups with one email fail.
func prepareServer(ctx context.Context, cfg config.Config, store repository.Store, logger *slog.Logger) (*server.Server, error) {
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring %s schema: %w", cfg.Store.Driver, err)
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	return srv, nil
}
