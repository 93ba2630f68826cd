package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount. It scans from and writes to SQL like a
// decimal and always renders with two places in JSON ("9.50", not "9.5").
type Money struct{ decimal.Decimal }

var ZeroMoney = Money{decimal.Zero}

func MoneyOf(d decimal.Decimal) Money { return Money{d} }

// MustMoney parses s and panics on bad input; for seeds and tests.
func MustMoney(s string) Money { return Money{decimal.RequireFromString(s)} }

func (m Money) Plus(o Money) Money { return Money{m.Add(o.Decimal)} }

func (m Money) Times(n int) Money { return Money{m.Mul(decimal.NewFromInt(int64(n)))} }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(2))
}
