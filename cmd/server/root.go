package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/app"
	"github.com/godilite/store-audit/internal/config"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store-audit",
		Short: "Store inspection rating and ranking server",
		Long: `store-audit scores store inspection questionnaires, keeps each store's
rating summary reconciled and serves rankings over gRPC and HTTP.

Configuration is read from the environment (and a .env file if present).
Running without a subcommand is the same as "serve".`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the gRPC and HTTP servers",
		RunE:  runServe,
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			logger, err := config.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			return app.RunMigrations(cmd.Context(), cfg, logger)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	application, err := app.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}

	return application.Run()
}
