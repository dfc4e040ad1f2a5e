package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Krish-Depani/mold-tracker/config"
	"github.com/Krish-Depani/mold-tracker/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, env.ScanActivePolicy == config.ActivePolicyReject); err != nil {
				return err
			}
			logrus.Info("migration complete")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo plants, users and molds into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, env.ScanActivePolicy == config.ActivePolicyReject); err != nil {
				return err
			}
			if err := database.Seed(db, password); err != nil {
				return err
			}
			logrus.Info("seed complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "password123", "Password given to every seeded user")
	return cmd
}
