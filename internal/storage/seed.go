package storage

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
)

// SampleExpenses is the starter data loaded by cmd/initdb.
func SampleExpenses() []core.ExpenseInput {
	return []core.ExpenseInput{
		{Title: "Rent", Amount: core.NewMoney(5000000), DueDate: core.NewDate(2017, 11, 1)},
		{Title: "Phone Bill", Amount: core.NewMoney(10000), DueDate: core.NewDate(2017, 11, 27)},
		{Title: "Food", Amount: core.NewMoney(60000), DueDate: core.NewDate(2017, 11, 2)},
		{Title: "Car", Amount: core.NewMoney(27000), DueDate: core.NewDate(2017, 11, 25)},
		{Title: "Internet", Amount: core.NewMoney(10000), DueDate: core.NewDate(2017, 11, 12)},
	}
}

// Seed creates every input in order and returns the stored records.
func Seed(ctx context.Context, s Store, inputs []core.ExpenseInput) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(inputs))
	for _, in := range inputs {
		e, err := s.Create(ctx, in)
		if err != nil {
			return out, fmt.Errorf("seed %q: %w", in.Title, err)
		}
		out = append(out, e)
	}
	return out, nil
}
