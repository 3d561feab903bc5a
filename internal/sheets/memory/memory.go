// Package memory is an in-process sheets.ExpenseExporter for tests and
// dry runs.
package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	rows    [][]any
	exports int
	err     error
}

var _ sheets.ExpenseExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// FailWith makes subsequent exports return err.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Export replaces the stored rows.
func (e *Exporter) Export(_ context.Context, expenses []core.Expense) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.rows = sheets.Rows(expenses)
	e.exports++
	return nil
}

// Rows returns a copy of the last exported rows, header included.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	copy(out, e.rows)
	return out
}

// Exports returns how many exports succeeded.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
