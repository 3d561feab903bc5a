// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and their two-decimal representation.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount held as integer cents so no precision is lost. The zero
// value is an absent amount; NewMoney builds a present one, zero included.
type Money struct {
	Cents int64
	set   bool
}

// MaxCents bounds the magnitude of a single amount (ten trillion units).
const MaxCents int64 = 1_000_000_000_000_000

// amountPattern is checked before decimal parsing so exponent notation and
// oversized inputs never reach big-number arithmetic.
var amountPattern = regexp.MustCompile(`^[+-]?\d{1,16}([.,]\d{1,8})?$`)

// NewMoney returns a present amount of cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents, set: true}
}

// IsSet reports whether the amount was supplied.
func (m Money) IsSet() bool { return m.set }

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero and negative amounts are
// valid; malformed amounts are rejected with ErrValidation.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds half up)
//	ParseDecimalToCents("-25") -> -2500, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	if !amountPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(decimal.NewFromInt(MaxCents)) {
		return 0, fmt.Errorf("%w: amount too large", ErrValidation)
	}
	return cents.IntPart(), nil
}

// ParseMoney parses a user supplied amount into Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(cents), nil
}

// Validate reports an absent or out-of-range amount.
func (m Money) Validate() error {
	if !m.set {
		return fmt.Errorf("%w: amount is required", ErrValidation)
	}
	if m.Cents > MaxCents || m.Cents < -MaxCents {
		return fmt.Errorf("%w: amount too large", ErrValidation)
	}
	return nil
}

// Decimal returns the amount in units with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two fractional digits, e.g. "500.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
