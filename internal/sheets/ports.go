package sheets

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
)

// Header is the first row written by every exporter.
var Header = []any{"ID", "Title", "Amount", "Due Date", "Creation Date"}

// ExpenseExporter replaces the contents of an external sheet with expenses.
type ExpenseExporter interface {
	Export(ctx context.Context, expenses []core.Expense) error
}

// Rows renders expenses in their external representation, header first.
func Rows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, Header)
	for _, v := range core.Views(expenses) {
		rows = append(rows, []any{v.ID, v.Title, v.Amount.String(), v.DueDate, v.CreationDate})
	}
	return rows
}

// SheetRange returns the A1 range covering the exporter's columns.
func SheetRange(sheetName string) string {
	return fmt.Sprintf("'%s'!A:E", sheetName)
}
