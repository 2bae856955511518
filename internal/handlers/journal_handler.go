package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// @Summary List journal entries
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search_term query string false "Search by number, description or reference"
// @Param status query string false "draft, posted or reversed"
// @Param start_date query string false "From entry date (YYYY-MM-DD)"
// @Param end_date query string false "To entry date (YYYY-MM-DD)"
// @Param account_id query string false "Entries touching this account"
// @Success 200 {object} Response{data=[]models.JournalEntryResponse}
// @Router /ledger/journal-entries [get]
func (h *JournalHandler) Index(c *gin.Context) {
	query := &repository.JournalQuery{
		ListQuery: listQuery(c),
		Status:    c.Query("status"),
	}
	for key, target := range map[string]**time.Time{"start_date": &query.StartDate, "end_date": &query.EndDate} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		date, err := time.Parse(services.EntryDateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, key+" must be formatted as YYYY-MM-DD")
			return
		}
		*target = &date
	}
	if raw := c.Query("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "account_id must be a UUID")
			return
		}
		query.AccountID = &accountID
	}

	entries, total, err := h.journalService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]models.JournalEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].ToResponse())
	}
	respondPage(c, out, total, query.ListQuery, "Journal entries retrieved successfully")
}

// @Summary Show journal entry
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {object} Response{data=models.JournalEntryResponse}
// @Failure 404 {object} Response
// @Router /ledger/journal-entries/{entry_id} [get]
func (h *JournalHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	entry, err := h.journalService.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, entry.ToResponse(), "Journal entry retrieved successfully")
}

// @Summary Create journal entry
// @Description Creates a draft entry, optionally with its lines, in one transaction
// @Tags Journal Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.JournalEntryInput true "Journal entry"
// @Success 201 {object} Response{data=models.JournalEntryResponse}
// @Failure 422 {object} Response
// @Router /ledger/journal-entries [post]
func (h *JournalHandler) Create(c *gin.Context) {
	var req services.JournalEntryInput
	if !bindNested(c, "journal_entry", &req) {
		return
	}
	entry, err := h.journalService.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, entry.ToResponse(), "Journal entry created successfully")
}

// @Summary Update journal entry
// @Description Changes the header of a draft entry
// @Tags Journal Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Param request body services.JournalEntryUpdate true "Fields to change"
// @Success 200 {object} Response{data=models.JournalEntryResponse}
// @Failure 409 {object} Response
// @Router /ledger/journal-entries/{entry_id} [put]
func (h *JournalHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	var req services.JournalEntryUpdate
	if !bindNested(c, "journal_entry", &req) {
		return
	}
	entry, err := h.journalService.Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, entry.ToResponse(), "Journal entry updated successfully")
}

// @Summary Delete journal entry
// @Description Only draft entries can be deleted
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /ledger/journal-entries/{entry_id} [delete]
func (h *JournalHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	if err := h.journalService.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Journal entry deleted successfully")
}

// @Summary Add line
// @Tags Journal Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Param request body services.JournalLineInput true "Line"
// @Success 201 {object} Response{data=models.JournalEntryLineResponse}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /ledger/journal-entries/{entry_id}/lines [post]
func (h *JournalHandler) AddLine(c *gin.Context) {
	entryID, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	var req services.JournalLineInput
	if !bindNested(c, "line", &req) {
		return
	}
	line, err := h.journalService.AddLine(c.Request.Context(), entryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, line.ToResponse(), "Line added successfully")
}

// @Summary Update line
// @Tags Journal Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Param line_id path string true "Line ID"
// @Param request body services.JournalLineInput true "Line"
// @Success 200 {object} Response{data=models.JournalEntryLineResponse}
// @Failure 409 {object} Response
// @Router /ledger/journal-entries/{entry_id}/lines/{line_id} [put]
func (h *JournalHandler) UpdateLine(c *gin.Context) {
	entryID, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	lineID, ok := uuidParam(c, "line_id")
	if !ok {
		return
	}
	var req services.JournalLineInput
	if !bindNested(c, "line", &req) {
		return
	}
	line, err := h.journalService.UpdateLine(c.Request.Context(), entryID, lineID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, line.ToResponse(), "Line updated successfully")
}

// @Summary Remove line
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Param line_id path string true "Line ID"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /ledger/journal-entries/{entry_id}/lines/{line_id} [delete]
func (h *JournalHandler) RemoveLine(c *gin.Context) {
	entryID, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	lineID, ok := uuidParam(c, "line_id")
	if !ok {
		return
	}
	if err := h.journalService.RemoveLine(c.Request.Context(), entryID, lineID); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Line removed successfully")
}

// @Summary Post journal entry
// @Description Posts a balanced draft entry
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {object} Response{data=models.JournalEntryResponse}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /ledger/journal-entries/{entry_id}/post [post]
func (h *JournalHandler) Post(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	entry, err := h.journalService.Post(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, entry.ToResponse(), "Journal entry posted successfully")
}

// ReversalResponse carries a reversed entry and, when one was created, its compensating entry
type ReversalResponse struct {
	Entry        models.JournalEntryResponse  `json:"entry"`
	Compensating *models.JournalEntryResponse `json:"compensating_entry,omitempty"`
}

// @Summary Reverse journal entry
// @Description Reverses a posted entry with the configured strategy
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {object} Response{data=ReversalResponse}
// @Failure 409 {object} Response
// @Router /ledger/journal-entries/{entry_id}/reverse [post]
func (h *JournalHandler) Reverse(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	entry, compensating, err := h.journalService.Reverse(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	resp := ReversalResponse{Entry: entry.ToResponse()}
	if compensating != nil {
		comp := compensating.ToResponse()
		resp.Compensating = &comp
	}
	respond(c, http.StatusOK, resp, "Journal entry reversed successfully")
}

// @Summary Recalculate totals
// @Description Re-sums the lines of an entry and stores the totals
// @Tags Journal Entries
// @Produce json
// @Security BearerAuth
// @Param entry_id path string true "Journal entry ID"
// @Success 200 {object} Response{data=models.JournalEntryResponse}
// @Router /ledger/journal-entries/{entry_id}/recalculate [post]
func (h *JournalHandler) Recalculate(c *gin.Context) {
	id, ok := uuidParam(c, "entry_id")
	if !ok {
		return
	}
	entry, err := h.journalService.CalculateTotals(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, entry.ToResponse(), "Totals recalculated successfully")
}
