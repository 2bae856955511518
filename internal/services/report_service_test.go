package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_AccountStatementHTML(t *testing.T) {
	f := newLedgerFixture(t, nil)
	cash := f.account(t, "1110", models.AccountTypeAsset, models.NormalBalanceDebit, "0")
	sales := f.account(t, "4100", models.AccountTypeRevenue, models.NormalBalanceCredit, "0")
	postedSale(t, f, cash, sales, "40")

	svc := NewReportService(f.accounts, NewExportService(f.accounts, f.journal), nil, "")
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	html, account, err := svc.AccountStatementHTML(f.ctx, cash.ID, &from, nil)

	require.NoError(t, err)
	assert.Equal(t, cash.ID, account.ID)
	body := string(html)
	assert.Contains(t, body, "1110 Account 1110")
	assert.Contains(t, body, "from 2024-04-01")
	assert.Contains(t, body, "40.00")
	assert.Equal(t, 1, strings.Count(body, "<td>2024-05-01</td>"))
}

func TestReportService_SnapshotTrialBalance(t *testing.T) {
	f := newLedgerFixture(t, nil)
	cash := f.account(t, "1110", models.AccountTypeAsset, models.NormalBalanceDebit, "0")
	sales := f.account(t, "4100", models.AccountTypeRevenue, models.NormalBalanceCredit, "0")
	postedSale(t, f, cash, sales, "10")

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewReportService(f.accounts, NewExportService(f.accounts, f.journal), store, "")

	path, err := svc.SnapshotTrialBalance(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, path, "trial_balance_2024-05-10.xlsx")

	files, err := svc.Snapshots()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)

	reader, err := svc.OpenSnapshot(path)
	require.NoError(t, err)
	assert.Positive(t, reader.Len())

	_, err = svc.OpenSnapshot("snapshots/missing.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.OpenSnapshot("snapshots/../../secret.xlsx")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.OpenSnapshot("exports/other.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormatPeriod(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01 to 2024-01-31", formatPeriod(&from, &to))
	assert.Equal(t, "through 2024-01-31", formatPeriod(nil, &to))
	assert.Equal(t, "all dates", formatPeriod(nil, nil))
}

func TestReportService_PruneSnapshots(t *testing.T) {
	f := newLedgerFixture(t, nil)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewReportService(f.accounts, NewExportService(f.accounts, f.journal), store, "")

	stale, err := svc.SnapshotTrialBalance(f.ctx)
	require.NoError(t, err)
	fresh, err := svc.SnapshotTrialBalance(f.ctx)
	require.NoError(t, err)

	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, filepath.FromSlash(stale)), old, old))

	removed, err := svc.PruneSnapshots(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := svc.Snapshots()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, fresh, files[0].Path)
}
