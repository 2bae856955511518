package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accountID := uuid.MustParse("7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10")

	tests := []struct {
		name      string
		key       string
		body      string
		wantDebit string
		wantErr   bool
	}{
		{
			name:      "wrapped line",
			key:       "line",
			body:      `{"line": {"account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10", "debit_amount": "125.50"}}`,
			wantDebit: "125.5",
		},
		{
			name:      "flat line",
			key:       "line",
			body:      `{"account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10", "debit_amount": 40}`,
			wantDebit: "40",
		},
		{
			name:      "other envelope falls back to flat",
			key:       "line",
			body:      `{"journal_entry": {}, "account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10", "debit_amount": "1"}`,
			wantDebit: "1",
		},
		{
			name:    "envelope is not an object",
			key:     "line",
			body:    `{"line": "cash"}`,
			wantErr: true,
		},
		{
			name:    "bad amount inside envelope",
			key:     "line",
			body:    `{"line": {"account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10", "debit_amount": "ten"}}`,
			wantErr: true,
		},
		{
			name:    "array body",
			key:     "line",
			body:    `[{"account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10"}]`,
			wantErr: true,
		},
		{
			name:    "empty body",
			key:     "line",
			body:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var line services.JournalLineInput
			err := decodeEnvelope(c, tt.key, &line)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, accountID, line.AccountID)
			assert.True(t, decimal.RequireFromString(tt.wantDebit).Equal(line.DebitAmount), line.DebitAmount.String())
		})
	}
}

func TestDecodeEnvelope_RestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := `{"line": {"account_id": "7d3c1f1e-2b1a-4c55-9b6e-0a4f6d1c2e10"}}`

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))

	var line services.JournalLineInput
	require.NoError(t, decodeEnvelope(c, "line", &line))

	again, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(again))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "new_password", snakeCase("NewPassword"))
	assert.Equal(t, "password_confirmation", snakeCase("PasswordConfirmation"))
	assert.Equal(t, "id", snakeCase("ID"))
	assert.Equal(t, "email", snakeCase("email"))
}
