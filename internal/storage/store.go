// Package storage persists expenses.
//
// Store is the contract the rest of the application depends on. The SQL
// implementation in this package backs it with SQLite or PostgreSQL; the
// memory subpackage provides a non-durable implementation for tests.
package storage

import (
	"context"

	"expensetracker/internal/core"
)

// Store owns every read and write of Expense records.
//
// Get reports an absent id as (zero, false, nil). Update and Delete fail with
// core.ErrNotFound for unknown ids and never insert. Driver failures are
// reported wrapped in core.ErrStorage.
type Store interface {
	ListAll(ctx context.Context) ([]core.Expense, error)
	Get(ctx context.Context, id int64) (core.Expense, bool, error)
	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}
