// Package scan runs the receipt scanning pipeline: detect text on the image,
// parse the receipt fields out of it, normalize the vendor and predict a
// category. Steps share a State and run strictly in order.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/moneymanager/internal/classify"
	"github.com/tdnguyen/moneymanager/internal/ocr"
	"github.com/tdnguyen/moneymanager/internal/receipt"
)

// CategoryPredictor maps a normalized vendor name to a category.
type CategoryPredictor interface {
	Predict(vendor string) string
}

// Result is the outcome of one scan. Amount and Date are nil when the
// heuristics found nothing; SuggestedCategory is never empty once the
// pipeline completes.
type Result struct {
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Date              *time.Time       `json:"date,omitempty"`
	VendorName        string           `json:"vendorName,omitempty"`
	SuggestedCategory string           `json:"suggestedCategory"`
	RawText           string           `json:"rawText"`
}

// State holds the shared state across all pipeline steps.
type State struct {
	Image    []byte
	MimeType string

	RawText           string
	Lines             []string
	Receipt           receipt.Receipt
	NormalizedVendor  string
	SuggestedCategory string
}

// Result assembles the final scan result from the state.
func (s *State) Result() Result {
	return Result{
		Amount:            s.Receipt.TotalAmount,
		Date:              s.Receipt.TransactionDate,
		VendorName:        s.Receipt.VendorName,
		SuggestedCategory: s.SuggestedCategory,
		RawText:           s.RawText,
	}
}

// Step is a single step in the scanning pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// DetectTextStep runs OCR over the image.
type DetectTextStep struct {
	Detector ocr.TextDetector
}

func (s *DetectTextStep) Execute(ctx context.Context, state *State) error {
	rawText, lines, err := s.Detector.DetectText(ctx, state.Image, state.MimeType)
	if err != nil {
		return fmt.Errorf("detect text: %w", err)
	}
	state.RawText = rawText
	state.Lines = lines
	return nil
}

// ParseReceiptStep extracts the structured receipt from the detected text.
// Parsing never fails; missing fields stay absent.
type ParseReceiptStep struct{}

func (s *ParseReceiptStep) Execute(ctx context.Context, state *State) error {
	state.Receipt = receipt.Parse(state.RawText, state.Lines)
	return nil
}

// NormalizeVendorStep canonicalizes the extracted vendor for classification.
type NormalizeVendorStep struct{}

func (s *NormalizeVendorStep) Execute(ctx context.Context, state *State) error {
	state.NormalizedVendor = receipt.NormalizeVendor(state.Receipt.VendorName)
	return nil
}

// PredictCategoryStep asks the classifier for a category suggestion.
type PredictCategoryStep struct {
	Predictor CategoryPredictor
}

func (s *PredictCategoryStep) Execute(ctx context.Context, state *State) error {
	state.SuggestedCategory = s.Predictor.Predict(state.NormalizedVendor)
	if state.SuggestedCategory == "" {
		state.SuggestedCategory = classify.Uncategorized
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("scan step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Scanner is the standard 4-step receipt pipeline bound to its dependencies.
type Scanner struct {
	pipeline *Pipeline
}

// NewScanner wires the standard pipeline: DetectText, ParseReceipt,
// NormalizeVendor, PredictCategory.
func NewScanner(detector ocr.TextDetector, predictor CategoryPredictor) *Scanner {
	return &Scanner{
		pipeline: NewPipeline(
			&DetectTextStep{Detector: detector},
			&ParseReceiptStep{},
			&NormalizeVendorStep{},
			&PredictCategoryStep{Predictor: predictor},
		),
	}
}

// Scan runs the pipeline over one image.
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType string) (Result, error) {
	state := &State{Image: image, MimeType: mimeType}
	if err := s.pipeline.Execute(ctx, state); err != nil {
		return Result{}, fmt.Errorf("Scan: %w", err)
	}
	return state.Result(), nil
}
