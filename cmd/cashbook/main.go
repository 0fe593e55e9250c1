// Command cashbook manages the ledger from the terminal. It works on the same
// database as the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cashbook/internal/app"
	"cashbook/internal/config"
	"cashbook/internal/database"
	"cashbook/internal/logger"
	"cashbook/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{open: openFromEnv}
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every command.
type cli struct {
	open func(ctx context.Context) (*app.App, error)

	app     *app.App
	output  string
	verbose bool
}

func (c *cli) services() *services.Registry {
	return c.app.Services
}

func openFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	dbConfig, err := database.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	return app.Open(ctx, cfg, dbConfig)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "cashbook",
		Short:         "Keep cash books and loan books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.verbose {
				logger.Init(os.Getenv("ENV"))
			} else {
				logger.Replace(zap.NewNop())
			}
			switch c.output {
			case outputAuto, outputTable, outputJSON:
			default:
				return fmt.Errorf("unknown output %q (use auto, table or json)", c.output)
			}

			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			err := c.app.Close()
			c.app = nil
			return err
		},
	}

	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputAuto, "output format: auto, table or json")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newBookCmd(c),
		newTxCmd(c),
		newLoanCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newReportCmd(c),
		newRemindersCmd(c),
		newActivityCmd(c),
	)
	return root
}
