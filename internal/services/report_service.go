package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/storage"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

// SnapshotCategory is the storage folder for archived ledger reports
const SnapshotCategory = "snapshots"

// ReportService renders HTML ledger reports to PDF and archives periodic snapshots
type ReportService struct {
	accountSvc *AccountService
	exportSvc  *ExportService
	store      *storage.LocalStorage
	templates  *template.Template
}

func NewReportService(accountSvc *AccountService, exportSvc *ExportService, store *storage.LocalStorage, wkhtmltopdfPath string) *ReportService {
	if wkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(wkhtmltopdfPath)
	}
	return &ReportService{
		accountSvc: accountSvc,
		exportSvc:  exportSvc,
		store:      store,
		templates:  template.Must(template.ParseFS(reportTemplates, "templates/reports/*.html")),
	}
}

type statementLine struct {
	Date        string
	EntryNumber string
	Description string
	Debit       string
	Credit      string
	Balance     string
}

type statementData struct {
	Account     *models.Account
	Path        string
	Period      string
	GeneratedAt string
	Opening     string
	Lines       []statementLine
	TotalDebit  string
	TotalCredit string
	Closing     string
}

// AccountStatementHTML renders the statement of one account for a period
func (s *ReportService) AccountStatementHTML(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]byte, *models.Account, error) {
	gl, err := s.accountSvc.GeneralLedger(ctx, accountID, from, to)
	if err != nil {
		return nil, nil, err
	}
	path, err := s.accountSvc.HierarchyPath(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	data := statementData{
		Account:     gl.Account,
		Path:        path,
		Period:      formatPeriod(from, to),
		GeneratedAt: s.accountSvc.now().Format("2006-01-02 15:04"),
		Opening:     gl.Opening.StringFixed(2),
		TotalDebit:  gl.TotalDebit.StringFixed(2),
		TotalCredit: gl.TotalCredit.StringFixed(2),
		Closing:     gl.Closing.StringFixed(2),
	}
	for _, l := range gl.Lines {
		data.Lines = append(data.Lines, statementLine{
			Date:        l.EntryDate.Format(EntryDateLayout),
			EntryNumber: l.EntryNumber,
			Description: l.Description,
			Debit:       l.DebitAmount.StringFixed(2),
			Credit:      l.CreditAmount.StringFixed(2),
			Balance:     l.Running.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "account_statement.html", data); err != nil {
		return nil, nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), gl.Account, nil
}

// AccountStatementPDF renders the account statement through wkhtmltopdf
func (s *ReportService) AccountStatementPDF(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]byte, string, error) {
	html, account, err := s.AccountStatementHTML(ctx, accountID, from, to)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.generatePDF(html)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("statement_%s.pdf", account.Code), nil
}

func (s *ReportService) generatePDF(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// SnapshotTrialBalance archives the current trial balance as XLSX and returns its storage path
func (s *ReportService) SnapshotTrialBalance(ctx context.Context) (string, error) {
	data, filename, err := s.exportSvc.TrialBalanceXLSX(ctx)
	if err != nil {
		return "", err
	}
	path, err := s.store.Save(data, filename, SnapshotCategory)
	if err != nil {
		return "", err
	}
	logger.Info("trial balance snapshot archived", "path", path)
	return path, nil
}

// Snapshots lists archived ledger reports, newest first
func (s *ReportService) Snapshots() ([]storage.StoredFile, error) {
	return s.store.List(SnapshotCategory)
}

// PruneSnapshots removes archived reports older than the retention window
func (s *ReportService) PruneSnapshots(retention time.Duration) (int, error) {
	return s.store.Prune(SnapshotCategory, s.accountSvc.now().Add(-retention))
}

// OpenSnapshot returns a reader for one archived report
func (s *ReportService) OpenSnapshot(path string) (*bytes.Reader, error) {
	if !strings.HasPrefix(path, SnapshotCategory+"/") {
		return nil, ErrNotFound
	}
	f, err := s.store.Open(path)
	switch {
	case errors.Is(err, storage.ErrInvalidPath):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

func formatPeriod(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return from.Format(EntryDateLayout) + " to " + to.Format(EntryDateLayout)
	case from != nil:
		return "from " + from.Format(EntryDateLayout)
	case to != nil:
		return "through " + to.Format(EntryDateLayout)
	default:
		return "all dates"
	}
}
