package persistence

import (
	"strings"

	"github.com/hms/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":                     true,
	"created_at":             true,
	"updated_at":             true,
	"po_number":              true,
	"supplier_name":          true,
	"order_date":             true,
	"expected_delivery_date": true,
	"status":                 true,
	"total_amount":           true,
}

// DepartmentServiceSortFields contains allowed sort fields for department services
var DepartmentServiceSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"department_id": true,
	"name":          true,
	"base_cost":     true,
	"active":        true,
}

// orderClause builds a whitelisted ORDER BY clause, falling back to defaultOrder
func orderClause(filter shared.Filter, allowed map[string]bool, defaultOrder string) string {
	sortField := ValidateSortField(filter.OrderBy, allowed, "")
	if sortField == "" {
		return defaultOrder
	}
	return sortField + " " + ValidateSortOrder(filter.OrderDir)
}
