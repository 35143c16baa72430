package persistence

import (
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (default)
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a safe ORDER BY expression from a filter
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

// countOf counts rows on a copy of query so the caller can keep chaining it
func countOf(query *gorm.DB) (int64, error) {
	var total int64
	err := query.Session(&gorm.Session{}).Count(&total).Error
	return total, err
}

// paginate applies offset and limit; a zero page size means no limit
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"price":      true,
	"slug":       true,
}

// IngredientSortFields contains allowed sort fields for ingredients
var IngredientSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"quantity":   true,
}

// StockSortFields contains allowed sort fields for stock listings
var StockSortFields = map[string]bool{
	"name":     true,
	"quantity": true,
}

// MovementSortFields contains allowed sort fields for the stock ledger
var MovementSortFields = map[string]bool{
	"created_at": true,
	"quantity":   true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"number":        true,
	"total":         true,
	"status":        true,
	"scheduled_for": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"name":          true,
	"email":         true,
	"role":          true,
	"last_login_at": true,
}
