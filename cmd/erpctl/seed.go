package main

import (
	"os"

	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/seed"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	admin := seed.Admin{
		Name:     os.Getenv("ADMIN_NAME"),
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	var skipAdmin bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load business types, modules, the chart of accounts and an admin user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := connect(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			var a *seed.Admin
			if !skipAdmin && admin.Email != "" {
				a = &admin
			}
			return seed.NewSeeder(repository.NewRepositories(db)).Run(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&admin.Name, "admin-name", admin.Name, "administrator display name")
	cmd.Flags().StringVar(&admin.Email, "admin-email", admin.Email, "administrator e-mail (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&admin.Password, "admin-password", admin.Password, "administrator password (defaults to ADMIN_PASSWORD)")
	cmd.Flags().BoolVar(&skipAdmin, "skip-admin", false, "do not create the administrator")
	return cmd
}
