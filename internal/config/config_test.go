package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/erp")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ReversalModeFlip, cfg.LedgerReversalMode)
	assert.Equal(t, 24*7, cfg.InvitationTTLHours)
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_RejectsUnknownReversalMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/erp")
	t.Setenv("LEDGER_REVERSAL_MODE", "delete")

	_, err := Load()

	assert.ErrorContains(t, err, "LEDGER_REVERSAL_MODE")
}

func TestGetEnvAsSlice_TrimsSpaces(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvAsSlice("ALLOWED_ORIGINS", nil))
}
