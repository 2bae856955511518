package repository

import "strings"

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// orderClause builds an ORDER BY expression from the query, falling back to def.
// SortBy is restricted to plain column names.
func orderClause(q *ListQuery, def string) string {
	if q == nil || q.SortBy == "" || !isColumnName(q.SortBy) {
		return def
	}
	if strings.EqualFold(q.SortDir, "desc") {
		return q.SortBy + " DESC"
	}
	return q.SortBy + " ASC"
}

func isColumnName(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
