package domain

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var stallNumberRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Stall numbers are stored as DECIMAL(6,2).
const stallNumberScale = 2

var stallNumberLimit = decimal.New(1, 6-stallNumberScale)

// StallNumber is a stall identifier. Integer and decimal spellings of the
// same value ("12", "12.0") are the same StallNumber; half stalls such as
// 107.5 are valid.
type StallNumber struct{ d decimal.Decimal }

func NewStallNumber(n int64) StallNumber { return StallNumber{d: decimal.NewFromInt(n)} }

// ParseStallNumber accepts a non-negative integer or decimal literal that
// fits the stored column: below 10000, at most two significant fractional
// digits. Anything else could only be bound lossily, so it is rejected.
func ParseStallNumber(s string) (StallNumber, error) {
	s = strings.TrimSpace(s)
	if !stallNumberRe.MatchString(s) {
		return StallNumber{}, fmt.Errorf("%w: stall number %q", ErrInvalidInput, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return StallNumber{}, fmt.Errorf("%w: stall number %q", ErrInvalidInput, s)
	}
	if err := checkStallRange(d); err != nil {
		return StallNumber{}, fmt.Errorf("%w: stall number %q: %w", ErrInvalidInput, s, err)
	}
	return StallNumber{d: d}, nil
}

func checkStallRange(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThanOrEqual(stallNumberLimit) {
		return fmt.Errorf("out of range [0, %s)", stallNumberLimit)
	}
	if !d.Equal(d.Truncate(stallNumberScale)) {
		return fmt.Errorf("more than %d fractional digits", stallNumberScale)
	}
	return nil
}

// MustStallNumber is ParseStallNumber for literals known to be valid.
func MustStallNumber(s string) StallNumber {
	n, err := ParseStallNumber(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String is the canonical spelling: no trailing fractional zeros.
func (n StallNumber) String() string { return n.d.String() }

func (n StallNumber) Equal(o StallNumber) bool { return n.d.Equal(o.d) }

func (n StallNumber) IsInteger() bool { return n.d.IsInteger() }

func (n StallNumber) MarshalJSON() ([]byte, error) { return []byte(n.d.String()), nil }

func (n *StallNumber) UnmarshalJSON(b []byte) error { return n.d.UnmarshalJSON(b) }

func (n *StallNumber) Scan(v any) error { return n.d.Scan(v) }

// Value binds integers as int64 and half stalls as float64 so that both
// INT and DECIMAL columns compare numerically. Numbers outside the column's
// range or scale are refused rather than truncated into another stall.
func (n StallNumber) Value() (driver.Value, error) {
	if err := checkStallRange(n.d); err != nil {
		return nil, fmt.Errorf("stall number %s: %w", n.d, err)
	}
	if n.d.IsInteger() {
		return n.d.IntPart(), nil
	}
	// Two fractional digits under 10000 round-trip through float64.
	f, _ := n.d.Float64()
	return f, nil
}
