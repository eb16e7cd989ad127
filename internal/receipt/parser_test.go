package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeVendor(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Highlands Coffee - 123 Nguyen Hue", "highlands coffee"},
		{"  GRAB  ", "grab"},
		{"WinMart CN Quan 7", "winmart"},
		{"Starbucks", "starbucks"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVendor(tt.raw); got != tt.want {
			t.Errorf("NormalizeVendor(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeVendorIdempotent(t *testing.T) {
	raws := []string{
		"Highlands Coffee - 123 Nguyen Hue",
		"WinMart CN Quan 7",
		"Pho 24",
	}
	for _, raw := range raws {
		once := NormalizeVendor(raw)
		if twice := NormalizeVendor(once); twice != once {
			t.Errorf("NormalizeVendor not idempotent on %q: %q -> %q", raw, once, twice)
		}
	}
}

func TestExtractMoney(t *testing.T) {
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"TỔNG CỘNG: 3.250.000 VNĐ", 3_250_000, true},
		{"Thành tiền: 50,000đ", 50_000, true},
		{"20:04 26/12/2025", 0, false}, // time and date, not money
		{"20.09.2025", 0, false},       // dotted date
		{"500", 0, false},              // below the noise floor
		{"1000", 0, false},             // floor is exclusive
		{"1001", 1001, true},
		{"no numbers here", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractMoney(tt.text)
		if ok != tt.ok {
			t.Errorf("ExtractMoney(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("ExtractMoney(%q) = %s, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParse_SupermarketReceipt(t *testing.T) {
	lines := []string{
		"09:41",
		"WinMart CN Quan 7",
		"123 Nguyen Van Linh",
		"Sua tuoi          35.000",
		"Banh mi           12.000",
		"TỔNG CỘNG: 3.250.000 VNĐ",
		"26/12/2025",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TotalAmount == nil {
		t.Fatal("expected a total amount")
	}
	if want := decimal.NewFromInt(3_250_000); !r.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", r.TotalAmount, want)
	}
	if r.TransactionDate == nil {
		t.Fatal("expected a transaction date")
	}
	// The status-bar clock pairs with the printed date.
	if want := time.Date(2025, time.December, 26, 9, 41, 0, 0, time.UTC); !r.TransactionDate.Equal(want) {
		t.Errorf("TransactionDate = %s, want %s", r.TransactionDate, want)
	}
	// The status-bar clock line is noise; the store line is the vendor.
	if r.VendorName != "WinMart CN Quan 7" {
		t.Errorf("VendorName = %q, want %q", r.VendorName, "WinMart CN Quan 7")
	}
}

func TestParse_AmountOnLineBelowKeyword(t *testing.T) {
	lines := []string{
		"Highlands Coffee - 123 Nguyen Hue",
		"Thành tiền",
		"85.000đ",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TotalAmount == nil {
		t.Fatal("expected a total amount")
	}
	if want := decimal.NewFromInt(85_000); !r.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", r.TotalAmount, want)
	}
}

func TestParse_CurrencyTagFallback(t *testing.T) {
	// No total keyword anywhere; the currency-tagged line wins over the
	// larger untagged number further down.
	lines := []string{
		"Grab",
		"Cuoc phi 52,000 VND",
		"Ma chuyen di 9999999",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TotalAmount == nil {
		t.Fatal("expected a total amount")
	}
	if want := decimal.NewFromInt(52_000); !r.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", r.TotalAmount, want)
	}
}

func TestParse_LargestTokenFallback(t *testing.T) {
	lines := []string{
		"Tap hoa Ba Tam",
		"12.000",
		"147.000",
		"35.000",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TotalAmount == nil {
		t.Fatal("expected a total amount")
	}
	if want := decimal.NewFromInt(147_000); !r.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", r.TotalAmount, want)
	}
}

func TestParse_VietnameseVerboseDate(t *testing.T) {
	lines := []string{"Netflix", "20 thg 9, 2025", "Thanh toán 260.000đ"}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TransactionDate == nil {
		t.Fatal("expected a transaction date")
	}
	if want := time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC); !r.TransactionDate.Equal(want) {
		t.Errorf("TransactionDate = %s, want %s", r.TransactionDate, want)
	}
}

func TestParse_TimeAndDateAcrossLines(t *testing.T) {
	lines := []string{"20:04", "Chuyen tien thanh cong", "26-12-2025"}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TransactionDate == nil {
		t.Fatal("expected a transaction date")
	}
	want := time.Date(2025, time.December, 26, 20, 4, 0, 0, time.UTC)
	if !r.TransactionDate.Equal(want) {
		t.Errorf("TransactionDate = %s, want %s", r.TransactionDate, want)
	}
}

func TestParse_BankNotificationVendorNoise(t *testing.T) {
	lines := []string{
		"20:04",
		"41%",
		"Mobile Banking",
		"now",
		"(TPBank): Tai khoan phat sinh giao dich",
		"Lời nhắn: thanh toan don hang",
		"Số dư: 12.345.678",
		"GRAB",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.VendorName != "GRAB" {
		t.Errorf("VendorName = %q, want %q", r.VendorName, "GRAB")
	}
}

func TestParse_ShortMultibyteLineIsNoise(t *testing.T) {
	// "Ồ!" is two characters in several bytes; it must be filtered like any
	// other sub-3-character line.
	lines := []string{
		"Ồ!",
		"Highlands Coffee",
	}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.VendorName != "Highlands Coffee" {
		t.Errorf("VendorName = %q, want %q", r.VendorName, "Highlands Coffee")
	}
}

func TestParse_NothingFound(t *testing.T) {
	lines := []string{"~", ".."}
	r := Parse(strings.Join(lines, "\n"), lines)

	if r.TotalAmount != nil {
		t.Errorf("TotalAmount = %s, want nil", r.TotalAmount)
	}
	if r.TransactionDate != nil {
		t.Errorf("TransactionDate = %s, want nil", r.TransactionDate)
	}
	if r.VendorName != "" {
		t.Errorf("VendorName = %q, want empty", r.VendorName)
	}
	if r.RawText == "" {
		t.Error("RawText must always carry the input")
	}
}
