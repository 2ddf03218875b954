package main

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal currency amount in major units. Arithmetic keeps
// full precision; Round2 (half-up to two fractional digits) is applied once,
// at the point a value is recorded or displayed, never between the
// intermediate steps of a multi-step calculation.
type Money struct {
	d decimal.Decimal
}

// ParseMoney builds a Money from a major-unit string such as "1234.56".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d}, nil
}

// MoneyFromFloat converts a float64 amount in major units. Non-finite input
// is rejected; this is the only arithmetic entry point that can fail.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, fmt.Errorf("%w: non-finite value", ErrInvalidAmount)
	}
	return Money{decimal.NewFromFloat(f)}, nil
}

func MoneyFromInt(units int64) Money {
	return Money{decimal.NewFromInt(units)}
}

func moneyFromDecimal(d decimal.Decimal) Money { return Money{d} }

func (m Money) Add(o Money) Money { return Money{m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{m.d.Sub(o.d)} }

// ScaleByRate multiplies by a bare rate such as a periodic interest rate.
func (m Money) ScaleByRate(rate decimal.Decimal) Money {
	return Money{m.d.Mul(rate)}
}

func (m Money) Cmp(o Money) int  { return m.d.Cmp(o.d) }
func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// Round2 rounds half away from zero to two places; for the non-negative
// amounts the ledger stores this is plain half-up.
func (m Money) Round2() Money { return Money{m.d.Round(2)} }

// String renders with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Round2().String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner so NUMERIC columns read straight into Money.
func (m *Money) Scan(v any) error { return m.d.Scan(v) }

// Value persists the amount rounded to two places, the single rounding
// boundary for stored money.
func (m Money) Value() (driver.Value, error) {
	return m.Round2().String(), nil
}

// NullMoney mirrors the sql.Null* types for nullable money columns.
type NullMoney struct {
	Money Money
	Valid bool
}

func (n *NullMoney) Scan(v any) error {
	if v == nil {
		*n = NullMoney{}
		return nil
	}
	n.Valid = true
	return n.Money.Scan(v)
}

func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

func (n *NullMoney) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullMoney{}
		return nil
	}
	n.Valid = true
	return n.Money.UnmarshalJSON(b)
}
