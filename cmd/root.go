package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Krish-Depani/mold-tracker/config"
	"github.com/Krish-Depani/mold-tracker/logger"
)

// Execute runs the CLI until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mold-tracker",
		Short:        "Mold asset tracker API",
		Long:         `mold-tracker serves the mold asset tracking API: QR scan sessions, inspections and their statistics.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
	)
	return cmd
}

// loadEnv reads configuration and sets up logging for every subcommand.
func loadEnv() (*config.Env, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	logger.Setup(env)
	return env, nil
}
