package storage

import (
	"database/sql/driver"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

const expenseColumns = "id, title, amount_cents, due_date, creation_date"

// expenseRow is the table shape of an Expense. All conversion between the
// domain type and SQL values goes through here.
type expenseRow struct {
	ID           int64
	Title        string
	AmountCents  int64
	DueDate      dbTime
	CreationDate dbTime
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var row expenseRow
	if err := s.Scan(&row.ID, &row.Title, &row.AmountCents, &row.DueDate, &row.CreationDate); err != nil {
		return core.Expense{}, err
	}
	return row.toExpense(), nil
}

func (r expenseRow) toExpense() core.Expense {
	return core.Expense{
		ID:           r.ID,
		Title:        r.Title,
		Amount:       core.NewMoney(r.AmountCents),
		DueDate:      core.DateOf(r.DueDate.Time),
		CreationDate: r.CreationDate.Time,
	}
}

func rowFromExpense(e core.Expense) expenseRow {
	return expenseRow{
		ID:           e.ID,
		Title:        e.Title,
		AmountCents:  e.Amount.Cents,
		DueDate:      dbTime{e.DueDate.Time},
		CreationDate: dbTime{e.CreationDate},
	}
}

// dbTime reads timestamps from either driver. lib/pq yields time.Time while
// SQLite may hand back text depending on the declared column type.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised time value %q", s)
}

func (t dbTime) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}
