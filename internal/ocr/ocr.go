// Package ocr extracts raw text from receipt images.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for text detection.
const DefaultModelName = "gemini-2.5-flash"

// TextDetector turns an image into the text printed on it. Implementations
// must preserve reading order; the receipt parser depends on line positions.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte, mimeType string) (rawText string, lines []string, err error)
}

// GeminiDetector detects text with the Gemini vision model.
type GeminiDetector struct {
	client *genai.Client
	model  string
}

// NewGeminiDetector creates a detector using ambient credentials
// (GEMINI_API_KEY or application default credentials).
func NewGeminiDetector(ctx context.Context) (*GeminiDetector, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiDetector: create genai client: %w", err)
	}
	return &GeminiDetector{client: client, model: DefaultModelName}, nil
}

const detectPrompt = "Transcribe ALL text visible in this image, top to bottom, " +
	"one physical line of the image per output line.\n" +
	"Keep the original characters exactly, including Vietnamese diacritics, " +
	"digits and punctuation.\n" +
	"Output plain text only. Do NOT describe the image, do NOT add labels, " +
	"do NOT wrap the output in code fences."

// DetectText sends the image to the model and returns the transcription both
// joined and split per line.
func (d *GeminiDetector) DetectText(ctx context.Context, image []byte, mimeType string) (string, []string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: detectPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, nil)
	if err != nil {
		return "", nil, fmt.Errorf("DetectText: generate content: %w", err)
	}

	rawText := cleanModelText(resp.Text())
	if rawText == "" {
		return "", nil, fmt.Errorf("DetectText: empty response from model")
	}

	return rawText, SplitLines(rawText), nil
}

// SplitLines splits detected text into trimmed lines, keeping empty ones out.
func SplitLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// cleanModelText strips code fences the model sometimes adds despite
// instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return ""
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}

	return strings.TrimSpace(s)
}
