package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// @Summary List accounts
// @Description Chart of accounts ordered by code
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search_term query string false "Search by code or name"
// @Param type query string false "asset, liability, equity, revenue or expense"
// @Param sub_type query string false "Sub type"
// @Param active query bool false "Only active accounts"
// @Param root query bool false "Only root accounts"
// @Param leaf query bool false "Only accounts without children"
// @Param parent_id query string false "Children of this account"
// @Success 200 {object} Response{data=[]models.AccountResponse}
// @Router /ledger/accounts [get]
func (h *AccountHandler) Index(c *gin.Context) {
	query := &repository.AccountQuery{
		ListQuery:  listQuery(c),
		ActiveOnly: c.Query("active") == "true",
		Type:       c.Query("type"),
		SubType:    c.Query("sub_type"),
		RootOnly:   c.Query("root") == "true",
		LeafOnly:   c.Query("leaf") == "true",
	}
	if raw := c.Query("parent_id"); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "parent_id must be a UUID")
			return
		}
		query.ParentID = &parentID
	}

	accounts, total, err := h.accountService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]models.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].ToResponse())
	}
	respondPage(c, out, total, query.ListQuery, "Accounts retrieved successfully")
}

// @Summary Account tree
// @Description Chart of accounts as nested root nodes
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include inactive accounts"
// @Success 200 {object} Response{data=[]models.AccountNode}
// @Router /ledger/accounts/tree [get]
func (h *AccountHandler) Tree(c *gin.Context) {
	tree, err := h.accountService.Tree(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, tree, "Account tree retrieved successfully")
}

// @Summary Show account
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} Response{data=models.AccountResponse}
// @Failure 404 {object} Response
// @Router /ledger/accounts/{account_id} [get]
func (h *AccountHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, account.ToResponse(), "Account retrieved successfully")
}

// @Summary Find account by code
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param code path string true "Account code"
// @Success 200 {object} Response{data=models.AccountResponse}
// @Failure 404 {object} Response
// @Router /ledger/accounts/code/{code} [get]
func (h *AccountHandler) ShowByCode(c *gin.Context) {
	account, err := h.accountService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, account.ToResponse(), "Account retrieved successfully")
}

// @Summary Create account
// @Tags Ledger Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AccountInput true "Account"
// @Success 201 {object} Response{data=models.AccountResponse}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /ledger/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req services.AccountInput
	if !bindNested(c, "account", &req) {
		return
	}
	account, err := h.accountService.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, account.ToResponse(), "Account created successfully")
}

// @Summary Update account
// @Description System accounts cannot be changed; moving an account re-levels its subtree
// @Tags Ledger Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Param request body services.AccountUpdate true "Fields to change"
// @Success 200 {object} Response{data=models.AccountResponse}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /ledger/accounts/{account_id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	var req services.AccountUpdate
	if !bindNested(c, "account", &req) {
		return
	}
	account, err := h.accountService.Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, account.ToResponse(), "Account updated successfully")
}

// @Summary Delete account
// @Description Only non-system accounts without lines or children can be deleted
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /ledger/accounts/{account_id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Account deleted successfully")
}

// @Summary Account balance
// @Description Opening balance plus posted activity, signed by the normal balance side
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} Response{data=models.AccountBalance}
// @Router /ledger/accounts/{account_id}/balance [get]
func (h *AccountHandler) Balance(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	balance, err := h.accountService.Balance(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, balance, "Account balance retrieved successfully")
}

// @Summary Account hierarchy path
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Success 200 {object} Response
// @Router /ledger/accounts/{account_id}/path [get]
func (h *AccountHandler) Path(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	path, err := h.accountService.HierarchyPath(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"path": path}, "Account path retrieved successfully")
}

// @Summary General ledger
// @Description Posted lines of an account with a running balance
// @Tags Ledger Accounts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Account ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} Response{data=models.GeneralLedger}
// @Router /ledger/accounts/{account_id}/general-ledger [get]
func (h *AccountHandler) GeneralLedger(c *gin.Context) {
	id, ok := uuidParam(c, "account_id")
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	ledger, err := h.accountService.GeneralLedger(c.Request.Context(), id, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, ledger, "General ledger retrieved successfully")
}

// @Summary Trial balance
// @Tags Ledger Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.TrialBalance}
// @Router /ledger/trial-balance [get]
func (h *AccountHandler) TrialBalance(c *gin.Context) {
	tb, err := h.accountService.TrialBalance(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, tb, "Trial balance retrieved successfully")
}
