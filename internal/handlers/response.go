package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Meta    *Pagination         `json:"meta,omitempty"`
}

// Pagination describes one page of a list response
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondPage(c *gin.Context, data any, total int64, query *repository.ListQuery, message string) {
	totalPages := 0
	if query.PerPage > 0 {
		totalPages = int((total + int64(query.PerPage) - 1) / int64(query.PerPage))
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: message,
		Meta: &Pagination{
			Page:       query.Page,
			PerPage:    query.PerPage,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// handleError maps service errors to HTTP statuses
func handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrModuleNotActivated):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrSessionRevoked),
		errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrAccountInactive):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrModuleAlreadyActive),
		errors.Is(err, services.ErrModuleAlreadyInactive):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrCodeTaken),
		errors.Is(err, services.ErrAlreadyInvited),
		errors.Is(err, services.ErrAccountInUse),
		errors.Is(err, services.ErrNotDraft),
		errors.Is(err, services.ErrNotPosted),
		errors.Is(err, services.ErrEntryLocked),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidPassword),
		errors.Is(err, services.ErrNotBalanced),
		errors.Is(err, services.ErrSystemAccount),
		errors.Is(err, services.ErrAccountCycle),
		errors.Is(err, services.ErrInvitationNotPending),
		errors.Is(err, services.ErrInvitationExpired),
		errors.Is(err, services.ErrInvalidResetToken):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		respondError(c, status, "Internal server error")
		return
	}
	respondError(c, status, err.Error())
}

// uuidParam parses a path param as a UUID, answering 404 when it is not one
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusNotFound, "record not found")
		return uuid.Nil, false
	}
	return id, true
}

// listQuery builds a ListQuery from page, per_page, search_term, sort_by and sort_dir
func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		query.PerPage = min(perPage, 100)
	}
	query.Search = c.Query("search_term")
	if query.Search == "" {
		query.Search = c.Query("search")
	}
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_dir", "asc")
	return query
}

// dateRange reads optional from/to query params formatted as YYYY-MM-DD
func dateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	parse := func(key string) (*time.Time, bool) {
		raw := c.Query(key)
		if raw == "" {
			return nil, true
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
				Success: false,
				Message: "Validation failed",
				Errors:  map[string][]string{key: {"must be a date formatted as " + time.DateOnly}},
			})
			return nil, false
		}
		return &t, true
	}
	if from, ok = parse("from"); !ok {
		return nil, nil, false
	}
	if to, ok = parse("to"); !ok {
		return nil, nil, false
	}
	return from, to, true
}

func sendFile(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
