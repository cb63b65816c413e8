// Package cmd holds the cobra command tree for the server binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/chronoflow/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand. Non-empty
// values override the matching environment variables.
type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "server",
		Short: "ChronoFlow event reminder backend",
		Long: `ChronoFlow stores user accounts and calendar events and reports events
when their date and time arrive.

Configuration is read from environment variables (PORT, STORE_DRIVER,
MONGO_URI, DB_PATH, JWT_SECRET, POLL_INTERVAL, ...). Running the binary
without a subcommand is the same as "server serve".`,
		SilenceUsage: true,
		// Run serve by default if no subcommand is given.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve.RunE(cmd, args)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: $LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (text, json) (default: $LOG_FORMAT or text)")

	root.AddCommand(serve)
	root.AddCommand(newSetupDBCmd(opts))
	root.AddCommand(newCheckDBCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg, nil
}
