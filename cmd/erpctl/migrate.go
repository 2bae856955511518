package main

import (
	"fmt"

	"github.com/sjperalta/modular-erp-api/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	var upSteps, downSteps int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *database.Migrator) error {
				return mg.Up(upSteps)
			}, cmd)
		},
	}
	up.Flags().IntVarP(&upSteps, "steps", "n", 0, "number of migrations to apply (0 = all)")

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(mg *database.Migrator) error {
				return mg.Down(downSteps)
			}, cmd)
		},
	}
	down.Flags().IntVarP(&downSteps, "steps", "n", 1, "number of migrations to roll back (0 = all)")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(*database.Migrator) error { return nil }, cmd)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withMigrator(fn func(*database.Migrator) error, cmd *cobra.Command) (err error) {
	cfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}
	mg, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, mg.Close()) }()

	if err := fn(mg); err != nil {
		return err
	}
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d", v)
	if dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
