// Package cmd provides CLI commands for pocketwise.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pocketwise/internal/app"
	"pocketwise/internal/cli"
	"pocketwise/internal/config"
	applog "pocketwise/internal/log"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	envFile string
	debug   bool

	cfg    *config.Config
	logger *applog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "pocketwise",
		Short: "Track personal income and expenses",
		Long: `pocketwise records income and expense transactions, summarizes them
and breaks spending down by category and month.

Transactions are stored in the backend selected by DATA_BACKEND
(memory, file or sqlite). Settings come from the environment, an optional
.env file and an optional YAML file named by POCKETWISE_CONFIG_FILE.

Example:
  pocketwise add --type expense --amount 12.50 --category Food
  pocketwise list --month 2024-01 --sort amountHigh
  pocketwise serve --port 8081`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file to load (default is .env)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newOptionsCmd(opts),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *globalOptions) init(cmd *cobra.Command) error {
	if err := cli.LoadEnvFile(o.envFile); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	logger, err := cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger.WithComponent(applog.ComponentCLI)
	return nil
}

// open starts a session for a one-shot command.
func (o *globalOptions) open(ctx context.Context, extra ...app.Option) (*cli.Session, error) {
	s, err := cli.OpenSession(ctx, o.cfg, o.logger, extra...)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return s, nil
}

func (o *globalOptions) close(s *cli.Session) {
	if err := s.Close(); err != nil {
		o.logger.Warn("Failed to close session", applog.FieldError, err)
	}
}
