package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DisplayLayout is how dates leave the system (MM/DD/YYYY).
	DisplayLayout = "01/02/2006"
	// InputLayout matches the value of an HTML date input.
	InputLayout = "2006-01-02"
)

// Date is a calendar date, always at midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD (form input) or MM/DD/YYYY.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: due_date is required", ErrValidation)
	}
	for _, layout := range []string{InputLayout, DisplayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD or MM/DD/YYYY)", ErrValidation, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: due_date is required", ErrValidation)
	}
	return nil
}

// String renders the date as MM/DD/YYYY.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayLayout)
}

// InputValue renders the date for an HTML date input.
func (d Date) InputValue() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(InputLayout)
}
