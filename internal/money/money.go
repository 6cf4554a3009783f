// Package money implements signed monetary amounts with two-decimal currency
// semantics. Arithmetic is exact fixed-point; rounding to cents happens only
// at explicit points (share computation, display), with round-half-up.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount is a signed monetary value. The zero value is zero money.
type Amount struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// FromFloat converts a float64 into an Amount without rounding.
func FromFloat(v float64) Amount {
	return Amount{value: decimal.NewFromFloat(v)}
}

// FromCents builds an Amount from an integer number of cents.
func FromCents(c int64) Amount {
	return Amount{value: decimal.New(c, -2)}
}

// Parse reads a decimal string such as "45.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{value: d}, nil
}

func (a Amount) Add(b Amount) Amount { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount         { return Amount{value: a.value.Neg()} }
func (a Amount) Abs() Amount         { return Amount{value: a.value.Abs()} }

// Div divides by an integer count without rounding. Callers round the result
// with RoundCents where two-decimal semantics apply.
func (a Amount) Div(n int64) Amount {
	return Amount{value: a.value.Div(decimal.NewFromInt(n))}
}

// MulFrac scales the amount by num/den, e.g. a weight over the weight total.
func (a Amount) MulFrac(num, den int64) Amount {
	return Amount{value: a.value.Mul(decimal.NewFromInt(num)).Div(decimal.NewFromInt(den))}
}

// MulPercent scales the amount by pct/100.
func (a Amount) MulPercent(pct float64) Amount {
	return Amount{value: a.value.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))}
}

// MulInt scales the amount by an integer count.
func (a Amount) MulInt(n int64) Amount {
	return Amount{value: a.value.Mul(decimal.NewFromInt(n))}
}

// RoundCents rounds to two decimals, half away from zero. For the positive
// amounts the ledger deals in this is round-half-up.
func (a Amount) RoundCents() Amount {
	return Amount{value: a.value.Round(2)}
}

func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) Cmp(b Amount) int          { return a.value.Cmp(b.value) }
func (a Amount) IsZero() bool              { return a.value.IsZero() }
func (a Amount) IsPositive() bool          { return a.value.IsPositive() }
func (a Amount) IsNegative() bool          { return a.value.IsNegative() }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }

// Float64 returns an inexact float64 view, for callers that only display.
func (a Amount) Float64() float64 { return a.value.InexactFloat64() }

// String renders the bare decimal value, e.g. "45.5".
func (a Amount) String() string { return a.value.String() }

// Display renders the amount as formatted US dollars, e.g. "$45.50".
func (a Amount) Display() string {
	cur := gomoney.New(0, gomoney.USD).Currency()
	return cur.Formatter().Format(a.value.Round(2).Shift(int32(cur.Fraction)).IntPart())
}

// MarshalJSON encodes the amount as a JSON number rounded to cents.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.value.Round(2).String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("unmarshal amount: %w", err)
	}
	a.value = d
	return nil
}
