// Command erpctl runs maintenance tasks against the ERP database:
// schema migrations, reference data seeding and ledger exports.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/database"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "erpctl",
	Short:         "erpctl manages the modular ERP database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd(), seedCmd(), exportCmd(), testEmailCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Environment)
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Warn("Ignoring LOG_LEVEL", "error", err)
		}
	}
	return cfg, nil
}

func loadDatabaseConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return cfg, nil
}

func connect(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.Connect(cfg.DatabaseURL, database.Options{MaxOpenConns: 5, MaxIdleConns: 1})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
