package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "order not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load order: %w", err), ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, "order not found", err.Error())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.TotalPages)
}

func TestNewFilter(t *testing.T) {
	f := NewFilter(0, 0, "name", "asc", "")
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = NewFilter(3, 500, "", "", "pan")
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, 200, f.Offset())
	assert.Equal(t, "pan", f.Search)
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.GetVersion())

	root.AddDomainEvent(&testEvent{BaseDomainEvent: NewBaseDomainEvent("X", "Y", root.ID)})
	root.IncrementVersion()

	assert.Len(t, root.GetDomainEvents(), 1)
	assert.Equal(t, 2, root.GetVersion())
	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "INSUFFICIENT_STOCK", CodeOf(fmt.Errorf("deduct: %w", ErrInsufficientStock)))
	assert.Equal(t, "", CodeOf(errors.New("database is locked")))
	assert.Equal(t, "", CodeOf(nil))
}
