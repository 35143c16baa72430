package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE orders;--", "DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty returns default", "", "created_at"},
		{"whitelisted field", "total", "total"},
		{"trims whitespace", "  number ", "number"},
		{"unknown field", "password_hash", "created_at"},
		{"case sensitive", "TOTAL", "created_at"},
		{"injection", "total; DROP TABLE orders;--", "created_at"},
		{"subquery", "id, (SELECT password_hash FROM users)", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, OrderSortFields, "created_at"))
		})
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "name ASC", orderClause("name", "asc", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at DESC", orderClause("bogus", "", ProductSortFields, "created_at"))
}
