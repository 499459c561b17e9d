// Package core holds the ledger domain: accounts, postings, goals and the
// pure aggregation maths the services build their summaries from.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount stored as integer cents.
type Money struct {
	Cents int64
}

var maxMoney = decimal.New(1<<63-1, -2)

// NewMoney builds Money from whole cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents}
}

// MoneyFromDecimal rounds half-up to two decimals and converts to cents.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	d = d.Round(2)
	if d.Abs().GreaterThan(maxMoney) {
		return Money{}, Validationf("amount %s is out of range", d.String())
	}
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

// ParseMoney accepts "12.34" or "12,34" and any sign. Callers decide
// whether negative or zero values are acceptable.
//
//	ParseMoney("12.34")  -> 1234
//	ParseMoney("12,345") -> 1235 (half-up)
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, Validationf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Validationf("invalid amount %q", s)
	}
	return MoneyFromDecimal(d)
}

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// CheckedAdd reports false when the sum does not fit in int64 cents.
func (m Money) CheckedAdd(o Money) (Money, bool) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return m, false
	}
	return Money{Cents: sum}, true
}

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) IsPositive() bool { return m.Cents > 0 }

// FloorZero clamps negative amounts to zero.
func (m Money) FloorZero() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*m = Money{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		parsed, err := ParseMoney(strings.Trim(raw, `"`))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return Validationf("invalid amount %s", raw)
	}
	parsed, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ChangePercent is (current-previous)/previous*100 rounded to two decimals.
// A category with no spending in the previous month and some now counts as +100%.
func ChangePercent(current, previous Money) float64 {
	if previous.Cents == 0 {
		if current.Cents > 0 {
			return 100
		}
		return 0
	}
	change := current.Decimal().Sub(previous.Decimal()).
		Div(previous.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return change.InexactFloat64()
}
