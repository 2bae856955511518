package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func postedSale(t *testing.T, f *ledgerFixture, cash, sales *models.Account, amount string) *models.JournalEntry {
	t.Helper()
	je := f.entry(t, line(cash.ID, amount, "0"), line(sales.ID, "0", amount))
	posted, err := f.journal.Post(f.ctx, je.ID)
	require.NoError(t, err)
	return posted
}

func TestExportService_TrialBalanceXLSX(t *testing.T) {
	f := newLedgerFixture(t, nil)
	cash := f.account(t, "1110", models.AccountTypeAsset, models.NormalBalanceDebit, "0")
	sales := f.account(t, "4100", models.AccountTypeRevenue, models.NormalBalanceCredit, "0")
	postedSale(t, f, cash, sales, "250")

	svc := NewExportService(f.accounts, f.journal)
	data, filename, err := svc.TrialBalanceXLSX(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "trial_balance_2024-05-10.xlsx", filename)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	code, err := book.GetCellValue("Trial Balance", "A5")
	require.NoError(t, err)
	assert.Equal(t, "1110", code)
	label, _ := book.GetCellValue("Trial Balance", "B7")
	assert.Equal(t, "Total", label)
	debit, _ := book.GetCellValue("Trial Balance", "D7")
	assert.Contains(t, debit, "250")
}

func TestExportService_GeneralLedgerCSV(t *testing.T) {
	f := newLedgerFixture(t, nil)
	cash := f.account(t, "1110", models.AccountTypeAsset, models.NormalBalanceDebit, "10")
	sales := f.account(t, "4100", models.AccountTypeRevenue, models.NormalBalanceCredit, "0")
	first := postedSale(t, f, cash, sales, "100")
	postedSale(t, f, cash, sales, "50")

	svc := NewExportService(f.accounts, f.journal)
	data, filename, err := svc.GeneralLedgerCSV(f.ctx, cash.ID, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "general_ledger_1110.csv", filename)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"", "", "Opening balance", "", "", "10.00"}, records[2])
	assert.Equal(t, first.EntryNumber, records[3][1])
	assert.Equal(t, "110.00", records[3][5])
	assert.Equal(t, []string{"", "", "Totals", "150.00", "0.00", "160.00"}, records[5])
}

func TestExportService_GeneralLedgerUnknownAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	svc := NewExportService(f.accounts, f.journal)

	_, _, err := svc.GeneralLedgerCSV(f.ctx, uuid.New(), nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportService_JournalVoucherPDF(t *testing.T) {
	f := newLedgerFixture(t, nil)
	cash := f.account(t, "1110", models.AccountTypeAsset, models.NormalBalanceDebit, "0")
	sales := f.account(t, "4100", models.AccountTypeRevenue, models.NormalBalanceCredit, "0")
	je := f.entry(t, line(cash.ID, "75", "0"), line(sales.ID, "0", "75"))

	svc := NewExportService(f.accounts, f.journal)
	data, filename, err := svc.JournalVoucherPDF(f.ctx, je.ID)

	require.NoError(t, err)
	assert.Equal(t, "voucher_"+je.EntryNumber+".pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
