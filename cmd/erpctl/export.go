package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/sjperalta/modular-erp-api/internal/storage"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export ledger reports",
	}

	var outDir string
	trialBalance := &cobra.Command{
		Use:   "trial-balance",
		Short: "Write the current trial balance as an XLSX workbook",
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

			store, err := storage.NewLocalStorage(cfg.StoragePath)
			if err != nil {
				return err
			}
			worker := jobs.NewWorker(1)
			defer worker.Shutdown()

			svcs := services.NewServices(repository.NewRepositories(db), worker, store, cfg)
			data, filename, err := svcs.Export.TrialBalanceXLSX(cmd.Context())
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	trialBalance.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	cmd.AddCommand(trialBalance)
	return cmd
}
