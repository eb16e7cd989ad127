// Package receipt converts raw OCR text from a scanned bill into a
// structured receipt: total amount, transaction date and vendor guess. Every
// extraction is heuristic and degrades to an absent value; nothing in this
// package returns an error.
package receipt

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Receipt is the structured reading of one scanned bill. All fields except
// RawText are optional: absence is a valid outcome, not an error.
type Receipt struct {
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
	TransactionDate *time.Time       `json:"transactionDate,omitempty"`
	VendorName      string           `json:"vendorName,omitempty"`
	RawText         string           `json:"rawText"`
}

// Parse runs the amount, date and vendor heuristics over the detected text.
// lines must be the OCR output split in reading order; rawText is the same
// text joined, used by the date patterns that span lines.
func Parse(rawText string, lines []string) Receipt {
	r := Receipt{RawText: rawText}

	for _, s := range amountStrategies {
		if val, ok := s.extract(lines); ok {
			v := val
			r.TotalAmount = &v
			break
		}
	}

	for _, s := range dateStrategies {
		if d, ok := s.extract(rawText); ok {
			t := d
			r.TransactionDate = &t
			break
		}
	}

	r.VendorName = extractVendor(lines)

	return r
}

//
// ── Amount ────────────────────────────────────────────────────────
//

type amountStrategy struct {
	name    string
	extract func(lines []string) (decimal.Decimal, bool)
}

// amountStrategies are tried in order; the first match wins. New heuristics
// are appended here without touching the control flow.
var amountStrategies = []amountStrategy{
	{name: "total-keyword", extract: amountNearTotalKeyword},
	{name: "currency-tag", extract: amountWithCurrencyTag},
	{name: "largest-token", extract: largestPlausibleAmount},
}

// Lines announcing the bill total: "TỔNG CỘNG", "Thành tiền", "Total", ...
var totalKeywordRe = regexp.MustCompile(`(?i)(?:tổng\s*(?:cộng|tiền)|thành\s*tiền|thanh\s*toán|total|amount)`)

// A money token tagged with a currency marker in either order:
// "50,000 VND", "VND 50,000", "50.000đ".
var currencyTagRe = regexp.MustCompile(`(?i)(\d+[.,]\d+.*(VND|đ|VNĐ))|((VND|VNĐ).* ?\d+[.,]\d+)`)

// amountNearTotalKeyword looks for a total keyword and extracts the money
// token on that line, or failing that, on the line immediately below it
// (receipts often print the number under the label).
func amountNearTotalKeyword(lines []string) (decimal.Decimal, bool) {
	for i, line := range lines {
		if !totalKeywordRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		if val, ok := ExtractMoney(line); ok {
			return val, true
		}
		if i+1 < len(lines) {
			if val, ok := ExtractMoney(lines[i+1]); ok {
				return val, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// amountWithCurrencyTag extracts from the first line carrying an explicit
// currency marker next to a number.
func amountWithCurrencyTag(lines []string) (decimal.Decimal, bool) {
	for _, line := range lines {
		if !currencyTagRe.MatchString(line) {
			continue
		}
		if val, ok := ExtractMoney(line); ok {
			return val, true
		}
	}
	return decimal.Decimal{}, false
}

// largestPlausibleAmount is the last resort: the largest money token in the
// whole text under the 10-billion ceiling. Times, dates and tokens at or
// below 1000 were already filtered out by the token parser.
func largestPlausibleAmount(lines []string) (decimal.Decimal, bool) {
	max := decimal.Zero
	for _, line := range lines {
		for _, val := range extractAllMoney(line) {
			if val.GreaterThan(max) && val.LessThan(moneyCeiling) {
				max = val
			}
		}
	}
	if max.IsZero() {
		return decimal.Decimal{}, false
	}
	return max, true
}

//
// ── Date ──────────────────────────────────────────────────────────
//

type dateStrategy struct {
	name    string
	extract func(text string) (time.Time, bool)
}

var dateStrategies = []dateStrategy{
	{name: "vietnamese-verbose", extract: dateVietnameseVerbose},
	{name: "time-and-date", extract: dateWithTime},
	{name: "bare-date", extract: dateBare},
}

var (
	// "20 thg 9, 2025" / "20 tháng 9 2025"
	vnDateRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:thg|tháng)\s*(\d{1,2})[,\s]*(\d{4})`)

	// "20:04 ... 26/12/2025"; the time may sit apart from the date.
	timeDateRe = regexp.MustCompile(`(?s)(\d{1,2}:\d{2}).*?(\d{1,2}[/-]\d{1,2}[/-]\d{4})`)

	bareDateRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`)
)

func dateVietnameseVerbose(text string) (time.Time, bool) {
	m := vnDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.Parse("2-1-2006", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dateWithTime(text string) (time.Time, bool) {
	m := timeDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	dateStr := strings.ReplaceAll(m[2], "-", "/")
	d, err := time.Parse("2/1/2006 15:04", dateStr+" "+m[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dateBare(text string) (time.Time, bool) {
	m := bareDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.Parse("2/1/2006", strings.ReplaceAll(m[1], "-", "/"))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

//
// ── Vendor ────────────────────────────────────────────────────────
//

var (
	leadingTimeRe = regexp.MustCompile(`^\d{1,2}[:.]\d{2}`) // status bar clock "09:41"
	percentageRe  = regexp.MustCompile(`^\d{1,3}%?$`)       // battery indicator "41%"
	smsSenderRe   = regexp.MustCompile(`^\(.*\):`)          // "(TPBank): ..."
)

var vendorLabelPrefixes = []string{"lời nhắn", "mã giao dịch"}

// extractVendor returns the first line that survives the noise filters:
// system-UI clutter, SMS notification prefixes and known field labels. The
// surviving line is returned verbatim; no surviving line yields "".
func extractVendor(lines []string) string {
	for _, line := range lines {
		text := strings.TrimSpace(line)
		// Character count, not bytes; accented Vietnamese would inflate len().
		if utf8.RuneCountInString(text) < 3 {
			continue
		}
		if leadingTimeRe.MatchString(text) || percentageRe.MatchString(text) {
			continue
		}

		lower := strings.ToLower(text)
		if strings.Contains(lower, "mobile") || lower == "now" || lower == "bây giờ" {
			continue
		}
		if smsSenderRe.MatchString(text) {
			continue
		}
		if hasLabelPrefix(lower) || strings.Contains(lower, "số dư") {
			continue
		}

		return text
	}
	return ""
}

func hasLabelPrefix(lower string) bool {
	for _, p := range vendorLabelPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
