package persistence

import (
	"context"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx          *gorm.DB
	afterCommit []func(context.Context)
}

// GormTransactionScope implements shared.TransactionScope with a context-carried
// GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction. When ctx already carries one, fn joins it:
// no savepoint is created and an error from fn aborts the outer transaction.
// A panic in fn rolls back and is re-raised. Hooks registered with AfterCommit
// run once the outermost transaction has committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}

	for _, hook := range state.afterCommit {
		hook(ctx)
	}
	return nil
}

// DBFromContext returns the transaction carried by ctx, or fallback bound to ctx
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.tx != nil {
		return state.tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// InTransaction reports whether ctx carries a transaction
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// AfterCommit registers fn to run after the transaction in ctx commits.
// Outside a transaction fn runs immediately. Hooks are dropped on rollback.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn(ctx)
}

// MustBeInTransaction returns an error when ctx carries no transaction.
// Operations that only make sense as part of a larger unit of work call it.
func MustBeInTransaction(ctx context.Context, op string) error {
	if !InTransaction(ctx) {
		return fmt.Errorf("%s must run inside a transaction scope", op)
	}
	return nil
}

var _ shared.TransactionScope = (*GormTransactionScope)(nil)
