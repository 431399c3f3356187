package repository

import (
	"strings"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not ask for a page size
const DefaultPageSize = 20

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (updatedAt DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderBy maps an API sort field to a document field and renders it for docstore.Query.
// fieldMap is a whitelist; unknown fields fall back to defaultField.
func BuildOrderBy(config SortConfig, fieldMap map[string]string, defaultField string) string {
	field, ok := fieldMap[config.Field]
	if !ok {
		field = defaultField
	}
	if config.Order == SortOrderAsc {
		return field
	}
	return "-" + field
}

// NormalizePage clamps page and page size to their allowed ranges
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paginate returns one page of items and the total count
func Paginate[T any](items []T, page, pageSize int) ([]T, int64) {
	page, pageSize = NormalizePage(page, pageSize)
	total := int64(len(items))
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, total
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

// matchesSearch reports whether any of the values contains the search term, case-insensitively
func matchesSearch(search string, values ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
