package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/sjperalta/modular-erp-api/internal/storage"
)

type ReportHandler struct {
	exportService *services.ExportService
	reportService *services.ReportService
}

func NewReportHandler(exportService *services.ExportService, reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		exportService: exportService,
		reportService: reportService,
	}
}

// @Summary Trial balance workbook
// @Tags Ledger Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /ledger/reports/trial-balance.xlsx [get]
func (h *ReportHandler) TrialBalanceXLSX(c *gin.Context) {
	data, filename, err := h.exportService.TrialBalanceXLSX(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	sendFile(c, data, filename, storage.ContentType(filename))
}

// @Summary General ledger CSV
// @Tags Ledger Reports
// @Produce text/csv
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /ledger/accounts/{account_id}/general-ledger.csv [get]
func (h *ReportHandler) GeneralLedgerCSV(c *gin.Context) {
	accountID, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	data, filename, err := h.exportService.GeneralLedgerCSV(c.Request.Context(), accountID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	sendFile(c, data, filename, storage.ContentType(filename))
}

// @Summary Journal voucher PDF
// @Tags Ledger Reports
// @Produce application/pdf
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {file} file
// @Router /ledger/journal-entries/{entry_id}/voucher.pdf [get]
func (h *ReportHandler) VoucherPDF(c *gin.Context) {
	entryID, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.JournalVoucherPDF(c.Request.Context(), entryID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendFile(c, data, filename, storage.ContentType(filename))
}

// @Summary Account statement
// @Description Rendered as PDF through wkhtmltopdf; format=html returns the HTML instead
// @Tags Ledger Reports
// @Produce application/pdf
// @Produce text/html
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param format query string false "pdf (default) or html"
// @Success 200 {file} file
// @Router /ledger/accounts/{account_id}/statement.pdf [get]
func (h *ReportHandler) StatementPDF(c *gin.Context) {
	accountID, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	if c.Query("format") == "html" {
		html, _, err := h.reportService.AccountStatementHTML(c.Request.Context(), accountID, from, to)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	data, filename, err := h.reportService.AccountStatementPDF(c.Request.Context(), accountID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	sendFile(c, data, filename, storage.ContentType(filename))
}

// @Summary Archived snapshots
// @Description Trial balance workbooks archived by the daily job, newest first
// @Tags Ledger Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]storage.StoredFile}
// @Router /ledger/reports/snapshots [get]
func (h *ReportHandler) Snapshots(c *gin.Context) {
	files, err := h.reportService.Snapshots()
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, files, "Snapshots retrieved successfully")
}

// @Summary Download snapshot
// @Tags Ledger Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param path path string true "Snapshot path as listed"
// @Success 200 {file} file
// @Failure 404 {object} Response
// @Router /ledger/reports/snapshots/{path} [get]
func (h *ReportHandler) DownloadSnapshot(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	reader, err := h.reportService.OpenSnapshot(rel)
	if err != nil {
		handleError(c, err)
		return
	}
	name := path.Base(rel)
	c.DataFromReader(http.StatusOK, reader.Size(), storage.ContentType(name), reader, map[string]string{
		"Content-Disposition": `attachment; filename="` + name + `"`,
	})
}
