package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sakif/chronoflow/internal/repository"
)

func newSetupDBCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-db",
		Short: "Create collections and indexes",
		Long: `Create the users and events collections (or tables) with their indexes:
a unique index on users.email, an index on events.email and a compound
index on events (date, time). Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store repository.Store) error {
				if err := store.EnsureSchema(ctx); err != nil {
					return fmt.Errorf("creating schema: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database setup completed")
				return printStats(ctx, cmd, store)
			})
		},
	}
}

func newCheckDBCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Ping the store and print document counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store repository.Store) error {
				if err := store.Ping(ctx); err != nil {
					return fmt.Errorf("store unreachable: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Connection: OK")
				return printStats(ctx, cmd, store)
			})
		},
	}
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, repository.Store) error) (err error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if cerr := store.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing store: %w", cerr))
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Store: %s\n", cfg.Store.Driver)
	return fn(ctx, store)
}

func printStats(ctx context.Context, cmd *cobra.Command, store repository.Store) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading counts: %w", err)
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintf(out, "  %-8s %d\n", name+":", stats[name])
	}
	return nil
}
