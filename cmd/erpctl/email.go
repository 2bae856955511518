package main

import (
	"fmt"
	"os"

	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/spf13/cobra"
)

func testEmailCmd() *cobra.Command {
	to := os.Getenv("TEST_EMAIL_TO")
	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send the welcome template through Resend to verify delivery settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
				return fmt.Errorf("RESEND_API_KEY and FROM_EMAIL must be set")
			}
			if to == "" {
				return fmt.Errorf("recipient is required (--to or TEST_EMAIL_TO)")
			}
			user := &models.User{Name: "Test User", Email: to}
			if err := services.NewEmailService(cfg).SendWelcome(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome e-mail sent to %s\n", to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", to, "recipient address")
	return cmd
}
