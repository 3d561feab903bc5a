package core

import (
	"fmt"
	"strings"
	"time"
)

type (
	// Expense is the single persisted record of the tracker.
	Expense struct {
		ID           int64
		Title        string
		Amount       Money
		DueDate      Date
		CreationDate time.Time
	}

	// ExpenseInput carries the three user-editable fields of an Expense.
	ExpenseInput struct {
		Title   string
		Amount  Money
		DueDate Date
	}
)

// ParseExpenseInput builds an ExpenseInput from raw form values. Every field
// is required; a missing or unparseable value yields an ErrValidation.
func ParseExpenseInput(title, amount, dueDate string) (ExpenseInput, error) {
	title = strings.TrimSpace(title)
	amount = strings.TrimSpace(amount)
	dueDate = strings.TrimSpace(dueDate)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if amount == "" {
		missing = append(missing, "amount")
	}
	if dueDate == "" {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return ExpenseInput{}, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	m, err := ParseMoney(amount)
	if err != nil {
		return ExpenseInput{}, err
	}
	d, err := ParseDate(dueDate)
	if err != nil {
		return ExpenseInput{}, err
	}

	in := ExpenseInput{Title: title, Amount: m, DueDate: d}
	if err := in.Validate(); err != nil {
		return ExpenseInput{}, err
	}
	return in, nil
}

// Validate reports whether all three fields are present. Beyond presence,
// any title, amount and due date is accepted.
func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.DueDate.Validate(); err != nil {
		return err
	}
	return nil
}

// NewExpense constructs an unsaved Expense. The creation date is taken from
// now and never changes afterwards.
func NewExpense(in ExpenseInput, now time.Time) (Expense, error) {
	if err := in.Validate(); err != nil {
		return Expense{}, err
	}
	return Expense{
		Title:        strings.TrimSpace(in.Title),
		Amount:       in.Amount,
		DueDate:      in.DueDate,
		CreationDate: now.UTC(),
	}, nil
}

// Apply overwrites the mutable fields. ID and CreationDate are left alone.
func (e *Expense) Apply(in ExpenseInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	e.Title = strings.TrimSpace(in.Title)
	e.Amount = in.Amount
	e.DueDate = in.DueDate
	return nil
}

// Input returns the editable fields of e, used to prefill the edit form.
func (e Expense) Input() ExpenseInput {
	return ExpenseInput{Title: e.Title, Amount: e.Amount, DueDate: e.DueDate}
}
