package core

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2017-11-01", "11/01/2017", true},
		{"11/27/2017", "11/27/2017", true},
		{" 2024-02-29 ", "02/29/2024", true},
		{"2023-02-29", "", false},
		{"27/11/2017", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected ErrValidation, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if d.String() != tc.want {
			t.Fatalf("%q rendered %q, want %q", tc.in, d.String(), tc.want)
		}
	}
}

func TestParseExpenseInput(t *testing.T) {
	in, err := ParseExpenseInput(" Rent ", "500", "2017-11-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if in.Title != "Rent" || in.Amount.Cents != 50000 || in.DueDate.String() != "11/01/2017" {
		t.Fatalf("unexpected input %+v", in)
	}

	bads := []struct{ title, amount, due string }{
		{"", "10", "2017-11-01"},
		{"Rent", "", "2017-11-01"},
		{"Rent", "10", ""},
		{"Rent", "ten", "2017-11-01"},
		{"Rent", "10", "tomorrow"},
		{"   ", "10", "2017-11-01"},
	}
	for i, b := range bads {
		if _, err := ParseExpenseInput(b.title, b.amount, b.due); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected ErrValidation, got %v", i, err)
		}
	}
}

func TestNewExpenseSetsCreationDate(t *testing.T) {
	now := time.Date(2017, 11, 5, 14, 30, 0, 0, time.UTC)
	in := ExpenseInput{Title: "Food", Amount: NewMoney(60000), DueDate: NewDate(2017, 11, 2)}

	e, err := NewExpense(in, now)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !e.CreationDate.Equal(now) {
		t.Fatalf("creation date = %v, want %v", e.CreationDate, now)
	}
	if e.ID != 0 {
		t.Fatalf("unsaved expense must not carry an id, got %d", e.ID)
	}

	if _, err := NewExpense(ExpenseInput{Title: "x"}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for incomplete input, got %v", err)
	}
}

func TestExpenseApplyKeepsIdentity(t *testing.T) {
	created := time.Date(2017, 11, 1, 9, 0, 0, 0, time.UTC)
	e := Expense{ID: 7, Title: "Car", Amount: NewMoney(27000), DueDate: NewDate(2017, 11, 25), CreationDate: created}

	if err := e.Apply(ExpenseInput{Title: "Car loan", Amount: NewMoney(30000), DueDate: NewDate(2017, 12, 25)}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e.ID != 7 || !e.CreationDate.Equal(created) {
		t.Fatalf("identity changed: %+v", e)
	}
	if e.Title != "Car loan" || e.Amount.Cents != 30000 || e.DueDate.String() != "12/25/2017" {
		t.Fatalf("fields not applied: %+v", e)
	}

	if err := e.Apply(ExpenseInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if e.Title != "Car loan" {
		t.Fatalf("failed apply must not mutate, got %q", e.Title)
	}
}

func TestExpenseViewJSON(t *testing.T) {
	e := Expense{
		ID:           1,
		Title:        "Rent",
		Amount:       NewMoney(50000),
		DueDate:      NewDate(2017, 11, 1),
		CreationDate: time.Date(2017, 10, 30, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(e.View())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":1,"title":"Rent","amount":500.00,"due_date":"11/01/2017","creation_date":"10/30/2017"}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Expense{{Amount: NewMoney(100)}, {Amount: NewMoney(250)}})
	if s.Count != 2 || s.TotalString() != "3.50" {
		t.Fatalf("unexpected summary %+v", s)
	}

	huge := Summarize([]Expense{{Amount: NewMoney(math.MaxInt64)}, {Amount: NewMoney(math.MaxInt64)}})
	if got := huge.TotalString(); got != "184467440737095516.14" {
		t.Fatalf("total overflowed: %s", got)
	}
}

func TestParseExpenseInputAcceptsAnyPresentValue(t *testing.T) {
	cases := []struct {
		name, title, amount string
		cents               int64
	}{
		{"zero amount", "Refund", "0", 0},
		{"negative amount", "Refund", "-25.00", -2500},
		{"long title", strings.Repeat("a", 201), "10", 1000},
		{"multibyte title", strings.Repeat("é", 300), "10", 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := ParseExpenseInput(tc.title, tc.amount, "2024-01-01")
			if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if in.Amount.Cents != tc.cents || !in.Amount.IsSet() {
				t.Fatalf("amount = %+v, want %d cents", in.Amount, tc.cents)
			}
			if in.Title != tc.title {
				t.Fatalf("title changed: %q", in.Title)
			}
		})
	}
}

func TestValidateTracksAmountPresence(t *testing.T) {
	in := ExpenseInput{Title: "Free sample", Amount: NewMoney(0), DueDate: NewDate(2024, 1, 1)}
	if err := in.Validate(); err != nil {
		t.Fatalf("present zero amount rejected: %v", err)
	}

	in.Amount = Money{}
	if err := in.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("absent amount: expected ErrValidation, got %v", err)
	}
}
