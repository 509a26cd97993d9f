package main

import (
	"github.com/spf13/cobra"

	"taskboard/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or revert the database schema",
		ValidArgs: []string{string(database.Up), string(database.Down)},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.DSN(), logger)
			if err != nil {
				return err
			}
			return database.Migrate(db, database.Direction(args[0]), logger)
		},
	}
}
