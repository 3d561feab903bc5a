package core

import "encoding/json"

// ExpenseView is the external representation of an Expense, shared by the
// JSON API, the HTML pages and the spreadsheet export.
type ExpenseView struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Amount       json.Number `json:"amount"`
	DueDate      string      `json:"due_date"`
	CreationDate string      `json:"creation_date"`
}

// View converts e to its external representation.
func (e Expense) View() ExpenseView {
	return ExpenseView{
		ID:           e.ID,
		Title:        e.Title,
		Amount:       json.Number(e.Amount.String()),
		DueDate:      e.DueDate.String(),
		CreationDate: e.CreationDate.Format(DisplayLayout),
	}
}

// Views converts a slice of expenses preserving order.
func Views(expenses []Expense) []ExpenseView {
	out := make([]ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.View())
	}
	return out
}
