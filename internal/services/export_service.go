package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders ledger data as downloadable files
type ExportService struct {
	accountSvc *AccountService
	journalSvc *JournalService
}

func NewExportService(accountSvc *AccountService, journalSvc *JournalService) *ExportService {
	return &ExportService{accountSvc: accountSvc, journalSvc: journalSvc}
}

// TrialBalanceXLSX exports the current trial balance as a spreadsheet
func (s *ExportService) TrialBalanceXLSX(ctx context.Context) ([]byte, string, error) {
	tb, err := s.accountSvc.TrialBalance(ctx)
	if err != nil {
		return nil, "", err
	}
	buf, err := WriteTrialBalanceXLSX(tb)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("trial_balance_%s.xlsx", tb.GeneratedAt.Format("2006-01-02"))
	return buf, filename, nil
}

// WriteTrialBalanceXLSX renders a trial balance into an XLSX workbook
func WriteTrialBalanceXLSX(tb *models.TrialBalance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Trial Balance"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	_ = f.SetCellValue(sheet, "A1", "Trial Balance")
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", tb.GeneratedAt.Format("2006-01-02 15:04"))

	_ = f.SetSheetRow(sheet, "A4", &[]any{"Code", "Account", "Type", "Debit", "Credit"})
	_ = f.SetCellStyle(sheet, "A4", "E4", headerStyle)

	row := 5
	for _, r := range tb.Rows {
		debit, _ := r.Debit.Float64()
		credit, _ := r.Credit.Float64()
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(sheet, cell, &[]any{r.Code, r.Name, r.Type, debit, credit})
		row++
	}

	totalDebit, _ := tb.TotalDebit.Float64()
	totalCredit, _ := tb.TotalCredit.Float64()
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &[]any{"", "Total", "", totalDebit, totalCredit})
	last, _ := excelize.CoordinatesToCellName(5, row)
	_ = f.SetCellStyle(sheet, "D5", last, moneyStyle)
	_ = f.SetColWidth(sheet, "B", "B", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneralLedgerCSV exports the posted lines of one account with their running balance
func (s *ExportService) GeneralLedgerCSV(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]byte, string, error) {
	gl, err := s.accountSvc.GeneralLedger(ctx, accountID, from, to)
	if err != nil {
		return nil, "", err
	}
	account := gl.Account

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"General Ledger", account.Code, account.Name})
	_ = writer.Write([]string{"Date", "Entry", "Description", "Debit", "Credit", "Balance"})
	_ = writer.Write([]string{"", "", "Opening balance", "", "", gl.Opening.StringFixed(2)})
	for _, l := range gl.Lines {
		_ = writer.Write([]string{
			l.EntryDate.Format(EntryDateLayout),
			l.EntryNumber,
			l.Description,
			l.DebitAmount.StringFixed(2),
			l.CreditAmount.StringFixed(2),
			l.Running.StringFixed(2),
		})
	}
	_ = writer.Write([]string{"", "", "Totals", gl.TotalDebit.StringFixed(2), gl.TotalCredit.StringFixed(2), gl.Closing.StringFixed(2)})
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("general_ledger_%s.csv", account.Code)
	return buf.Bytes(), filename, nil
}

// JournalVoucherPDF prints one journal entry with its lines
func (s *ExportService) JournalVoucherPDF(ctx context.Context, entryID uuid.UUID) ([]byte, string, error) {
	entry, err := s.journalSvc.Get(ctx, entryID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Journal Voucher "+entry.EntryNumber)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(30, 6, "Date:")
	pdf.Cell(60, 6, entry.EntryDate.Format(EntryDateLayout))
	pdf.Cell(25, 6, "Status:")
	pdf.Cell(40, 6, entry.Status)
	pdf.Ln(6)
	pdf.Cell(30, 6, "Description:")
	pdf.MultiCell(0, 6, entry.Description, "", "L", false)
	if entry.Reference != nil {
		pdf.Cell(30, 6, "Reference:")
		pdf.Cell(60, 6, *entry.Reference)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(224, 224, 224)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Account", "1", 0, "L", true, 0, "")
	pdf.CellFormat(85, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Debit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Credit", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, l := range entry.Lines {
		code, desc := "", ""
		if l.Account != nil {
			code, desc = l.Account.Code, l.Account.Name
		}
		if l.Description != nil && *l.Description != "" {
			desc = *l.Description
		}
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", l.LineNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, code, "1", 0, "L", false, 0, "")
		pdf.CellFormat(85, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, l.DebitAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, l.CreditAmount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, entry.TotalDebit.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, entry.TotalCredit.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("voucher_%s.pdf", entry.EntryNumber)
	return buf.Bytes(), filename, nil
}
