package main

import (
	"github.com/spf13/cobra"

	"github.com/Kutay07/ContentLab-sub000/internal/store"
)

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.database(cmd.Context())
			if err != nil {
				return err
			}
			applied, err := store.ApplyMigrations(cmd.Context(), db, rt.migrations(dir))
			if err != nil {
				return err
			}
			if jsonOut {
				if applied == nil {
					applied = []string{}
				}
				return printJSON(map[string]any{"applied": applied})
			}
			if len(applied) == 0 {
				printInfo("Database is up to date\n")
				return nil
			}
			for _, name := range applied {
				printInfo("Applied %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Read migrations from this directory instead of the embedded set")
	return cmd
}
