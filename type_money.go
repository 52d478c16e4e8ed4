package carteira

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the only currency the tax engine deals with.
const Currency = "BRL"

// centavos is the number of decimal places of a persisted amount.
const centavos = 2

// Money represents a monetary value in reais.
type Money struct {
	value      decimal.Decimal // as major unit value
	fractional bool            // true to persist in full digits
}

func M[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// MustParseMoney parses a decimal string, it panics on invalid input.
func MustParseMoney(s string) Money {
	return Money{value: decimal.RequireFromString(s)}
}

// String returns the string representation of the money value, e.g. "R$1.234,56".
func (m Money) String() string {
	cur := money.GetCurrency(Currency)
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value)} }

// Rate applies a rate (e.g. 0.15 for 15%) to the amount.
func (m Money) Rate(r decimal.Decimal) Money { return Money{value: m.value.Mul(r)} }

// Round rounds the amount to centavos, half away from zero.
func (m Money) Round() Money { return Money{value: m.value.Round(centavos)} }

// MinM returns the smaller of two amounts.
func MinM(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxM returns the larger of two amounts.
func MaxM(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// exact return a copy of money that will be persisted with all the digits.
func (m Money) exact() Money {
	m.fractional = true
	return m
}

// MarshalJSON writes the amount as a bare JSON number rounded to centavos,
// unless the value is exact.
func (m Money) MarshalJSON() ([]byte, error) {
	rounded := m.value
	if !m.fractional {
		rounded = m.value.Round(centavos)
	}
	return []byte(rounded.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var v decimal.Decimal
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	m.value = v
	return nil
}
