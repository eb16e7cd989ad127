package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/ocr"
)

// fakeDetector returns canned OCR output.
type fakeDetector struct {
	text string
	err  error
}

func (f *fakeDetector) DetectText(_ context.Context, _ []byte, _ string) (string, []string, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, ocr.SplitLines(f.text), nil
}

// fakePredictor records the vendor it was asked about.
type fakePredictor struct {
	asked    string
	category string
}

func (f *fakePredictor) Predict(vendor string) string {
	f.asked = vendor
	return f.category
}

func TestScan_FullPipeline(t *testing.T) {
	text := strings.Join([]string{
		"Highlands Coffee - 123 Nguyen Hue",
		"TỔNG CỘNG: 85.000 VNĐ",
		"26/12/2025",
	}, "\n")
	detector := &fakeDetector{text: text}
	predictor := &fakePredictor{category: "Food & Beverage"}

	result, err := NewScanner(detector, predictor).Scan(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.Amount == nil || !result.Amount.Equal(decimal.NewFromInt(85_000)) {
		t.Errorf("Amount = %v, want 85000", result.Amount)
	}
	if result.Date == nil {
		t.Error("expected a date")
	}
	if result.VendorName != "Highlands Coffee - 123 Nguyen Hue" {
		t.Errorf("VendorName = %q", result.VendorName)
	}
	// The classifier must see the normalized vendor, not the raw line.
	if predictor.asked != "highlands coffee" {
		t.Errorf("predictor asked %q, want %q", predictor.asked, "highlands coffee")
	}
	if result.SuggestedCategory != "Food & Beverage" {
		t.Errorf("SuggestedCategory = %q", result.SuggestedCategory)
	}
	if result.RawText != text {
		t.Error("RawText must carry the full detected text")
	}
}

func TestScan_DetectorFailureStopsPipeline(t *testing.T) {
	detectErr := errors.New("model unavailable")
	detector := &fakeDetector{err: detectErr}
	predictor := &fakePredictor{category: "Food & Beverage"}

	_, err := NewScanner(detector, predictor).Scan(context.Background(), []byte("img"), "image/jpeg")
	if !errors.Is(err, detectErr) {
		t.Fatalf("err = %v, want wrapped detector error", err)
	}
	if predictor.asked != "" {
		t.Error("predictor must not run after a failed detection")
	}
}

func TestScan_EmptyPredictionFallsBack(t *testing.T) {
	detector := &fakeDetector{text: "Quan An Ngon\n45.000đ"}
	predictor := &fakePredictor{category: ""}

	result, err := NewScanner(detector, predictor).Scan(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.SuggestedCategory != "Uncategorized" {
		t.Errorf("SuggestedCategory = %q, want Uncategorized", result.SuggestedCategory)
	}
}
