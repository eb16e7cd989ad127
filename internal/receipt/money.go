package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money tokens are digit runs possibly containing separators. A run is
// rejected when it looks like a time (colon), a date (two or more slashes, or
// periods not in thousand-grouping), or is too small to be a price.
var moneyTokenRe = regexp.MustCompile(`\d[\d.,:/ ]*`)

var (
	moneyNoiseFloor = decimal.NewFromInt(1000)           // prices are > 1000 dong
	moneyCeiling    = decimal.NewFromInt(10_000_000_000) // 10 billion
)

// ExtractMoney returns the first plausible money token in the text.
func ExtractMoney(text string) (decimal.Decimal, bool) {
	for _, raw := range moneyTokenRe.FindAllString(text, -1) {
		if val, ok := parseMoneyToken(raw); ok {
			return val, true
		}
	}
	return decimal.Decimal{}, false
}

// extractAllMoney returns every plausible money token in the text.
func extractAllMoney(text string) []decimal.Decimal {
	var vals []decimal.Decimal
	for _, raw := range moneyTokenRe.FindAllString(text, -1) {
		if val, ok := parseMoneyToken(raw); ok {
			vals = append(vals, val)
		}
	}
	return vals
}

func parseMoneyToken(raw string) (decimal.Decimal, bool) {
	token := strings.TrimRight(strings.ReplaceAll(raw, " ", ""), ".,:/")

	if strings.Contains(token, ":") {
		return decimal.Decimal{}, false // time of day
	}
	if strings.Count(token, "/") >= 2 {
		return decimal.Decimal{}, false // date
	}
	if strings.Count(token, ".") >= 2 && !isThousandGrouped(token) {
		return decimal.Decimal{}, false // date-like, e.g. 20.09.2025
	}

	clean := strings.NewReplacer(".", "", ",", "").Replace(token)
	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !val.GreaterThan(moneyNoiseFloor) {
		return decimal.Decimal{}, false
	}
	return val, true
}

// isThousandGrouped reports whether a multi-period token is a plain
// thousand-grouped amount ("3.250.000"): every period-separated group after
// the first must be exactly three digits. Anything else ("20.09.2025") is
// treated as date-like.
func isThousandGrouped(token string) bool {
	groups := strings.Split(token, ".")
	for i, g := range groups {
		if g == "" {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
