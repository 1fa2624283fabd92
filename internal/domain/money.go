package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount of money in minor units. All price arithmetic happens
// on Cents; decimals only appear at the storage and wire boundaries.
type Cents int64

// MaxAmount is the largest price, premium or base price the catalog accepts.
// It matches the decimal(12,2) columns.
var MaxAmount = decimal.RequireFromString("9999999999.99")

var ErrAmountOverflow = errors.New("amount out of range")

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// CentsFromDecimal rounds d half away from zero to whole cents, saturating
// at the int64 bounds.
func CentsFromDecimal(d decimal.Decimal) Cents {
	c := d.Shift(2).Round(0)
	switch {
	case c.GreaterThan(maxCents):
		return math.MaxInt64
	case c.LessThan(minCents):
		return math.MinInt64
	}
	return Cents(c.IntPart())
}

// Add returns c+o, or ErrAmountOverflow when the sum leaves the int64 range.
func (c Cents) Add(o Cents) (Cents, error) {
	s := c + o
	if (o > 0 && s < c) || (o < 0 && s > c) {
		return 0, ErrAmountOverflow
	}
	return s, nil
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c as fixed two-decimal text, e.g. "800.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// CheckAmount rejects negative amounts and amounts above MaxAmount.
func CheckAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return Invalidf("%s must be greater than or equal to 0", field)
	}
	if d.GreaterThan(MaxAmount) {
		return Invalidf("%s must be less than or equal to %s", field, MaxAmount.StringFixed(2))
	}
	return nil
}
