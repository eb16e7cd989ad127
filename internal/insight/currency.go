package insight

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount in the Vietnamese convention used across
// the product: dot thousand-separators, no decimals, trailing dong sign.
// Example: 3250000 -> "3.250.000 ₫".
func FormatCurrency(amount decimal.Decimal) string {
	v := amount.Round(0).IntPart()

	negative := v < 0
	if negative {
		v = -v
	}

	digits := []byte(strings.TrimLeft(decimal.NewFromInt(v).String(), "-"))
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(d)
	}

	out := b.String() + " ₫"
	if negative {
		out = "-" + out
	}
	return out
}
