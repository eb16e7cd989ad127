// Package classify predicts an expense category from a normalized vendor
// name. A small naive Bayes model over word and character-trigram features is
// trained from seed vendor/category pairs; when the model cannot separate
// categories confidently, an edit-distance lookup against the seed vendors
// breaks the tie.
package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Uncategorized is returned when no prediction can be made. It is a real
// category name downstream, not an error.
const Uncategorized = "Uncategorized"

const (
	// marginThreshold is the minimum log-probability gap between the best
	// and second-best category before the Bayes answer is trusted on its
	// own.
	marginThreshold = 0.2

	// fuzzyMaxDistance is the edit distance cutoff for the fallback,
	// normalized by the longer string's length.
	fuzzyMaxDistance = 0.4
)

// TrainingPair is one labelled example.
type TrainingPair struct {
	Vendor   string
	Category string
}

// DefaultTrainingPairs returns the built-in seed set covering the vendors the
// product launched with.
func DefaultTrainingPairs() []TrainingPair {
	return []TrainingPair{
		{Vendor: "Highlands Coffee", Category: "Food & Beverage"},
		{Vendor: "Starbucks", Category: "Food & Beverage"},
		{Vendor: "McDonalds", Category: "Food & Beverage"},
		{Vendor: "Pho 24", Category: "Food & Beverage"},
		{Vendor: "Grab", Category: "Transportation"},
		{Vendor: "Uber", Category: "Transportation"},
		{Vendor: "Petrolimex", Category: "Transportation"},
		{Vendor: "Netflix", Category: "Entertainment"},
		{Vendor: "CGV Cinema", Category: "Entertainment"},
		{Vendor: "WinMart", Category: "Groceries"},
		{Vendor: "Circle K", Category: "Groceries"},
	}
}

type seedVendor struct {
	name     string // lower-cased
	category string
}

// Model is an immutable trained classifier. Safe for concurrent readers;
// create one Engine per goroutine (or use Classifier) to score with it.
type Model struct {
	categories []string
	priors     []float64            // log P(category), indexed like categories
	tokenProbs []map[string]float64 // log P(token|category)
	unseen     []float64            // smoothed log prob for unseen tokens
	seeds      []seedVendor
}

// Train builds a Model from labelled pairs. Pairs with a blank vendor or
// category are rejected rather than skipped, since a bad seed set is a
// deployment mistake.
func Train(pairs []TrainingPair) (*Model, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("classify: no training pairs")
	}

	counts := make(map[string]map[string]int) // category -> token -> count
	classTotals := make(map[string]int)       // category -> total token count
	classDocs := make(map[string]int)         // category -> example count
	vocab := make(map[string]struct{})
	seeds := make([]seedVendor, 0, len(pairs))

	for _, p := range pairs {
		vendor := strings.ToLower(strings.TrimSpace(p.Vendor))
		category := strings.TrimSpace(p.Category)
		if vendor == "" || category == "" {
			return nil, fmt.Errorf("classify: blank vendor or category in training pair %+v", p)
		}
		seeds = append(seeds, seedVendor{name: vendor, category: category})

		if counts[category] == nil {
			counts[category] = make(map[string]int)
		}
		classDocs[category]++
		for _, tok := range tokenize(vendor) {
			counts[category][tok]++
			classTotals[category]++
			vocab[tok] = struct{}{}
		}
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	m := &Model{
		categories: categories,
		priors:     make([]float64, len(categories)),
		tokenProbs: make([]map[string]float64, len(categories)),
		unseen:     make([]float64, len(categories)),
		seeds:      seeds,
	}

	vocabSize := float64(len(vocab))
	for i, c := range categories {
		m.priors[i] = math.Log(float64(classDocs[c]) / float64(len(pairs)))
		denom := float64(classTotals[c]) + vocabSize // Laplace smoothing
		m.tokenProbs[i] = make(map[string]float64, len(counts[c]))
		for tok, n := range counts[c] {
			m.tokenProbs[i][tok] = math.Log(float64(n+1) / denom)
		}
		m.unseen[i] = math.Log(1 / denom)
	}
	return m, nil
}

// tokenize emits word unigrams plus character trigrams of the
// whitespace-squashed vendor string. Trigrams catch partial OCR reads and
// glued words that unigrams miss.
func tokenize(vendor string) []string {
	tokens := strings.Fields(vendor)

	squashed := []rune(strings.Join(tokens, ""))
	for i := 0; i+3 <= len(squashed); i++ {
		tokens = append(tokens, "#"+string(squashed[i:i+3]))
	}
	return tokens
}

// Engine scores vendors against one Model. Not safe for concurrent use; it
// reuses its score buffer between calls.
type Engine struct {
	model  *Model
	scores []float64
}

// NewEngine returns a scoring engine bound to the model.
func (m *Model) NewEngine() *Engine {
	return &Engine{model: m, scores: make([]float64, len(m.categories))}
}

// Predict returns the category for a vendor name, or Uncategorized when the
// input is blank. The Bayes score decides; on a thin margin the nearest seed
// vendor by edit distance decides instead, and if no seed is close enough the
// Bayes answer stands.
func (e *Engine) Predict(vendor string) string {
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	if vendor == "" {
		return Uncategorized
	}

	m := e.model
	tokens := tokenize(vendor)
	for i := range m.categories {
		score := m.priors[i]
		for _, tok := range tokens {
			if p, ok := m.tokenProbs[i][tok]; ok {
				score += p
			} else {
				score += m.unseen[i]
			}
		}
		e.scores[i] = score
	}

	best, second := topTwo(e.scores)
	if e.scores[best]-second >= marginThreshold {
		return m.categories[best]
	}
	if category, ok := m.nearestSeed(vendor); ok {
		return category
	}
	return m.categories[best]
}

// nearestSeed finds the closest seed vendor within the normalized edit
// distance cutoff.
func (m *Model) nearestSeed(vendor string) (string, bool) {
	bestDist := math.Inf(1)
	bestCategory := ""
	for _, s := range m.seeds {
		longer := len([]rune(s.name))
		if l := len([]rune(vendor)); l > longer {
			longer = l
		}
		d := float64(levenshtein.ComputeDistance(vendor, s.name)) / float64(longer)
		if d < bestDist {
			bestDist = d
			bestCategory = s.category
		}
	}
	if bestDist < fuzzyMaxDistance {
		return bestCategory, true
	}
	return "", false
}

func topTwo(scores []float64) (best int, secondScore float64) {
	best = 0
	secondScore = math.Inf(-1)
	for i, s := range scores {
		if s > scores[best] {
			secondScore = scores[best]
			best = i
		} else if i != best && s > secondScore {
			secondScore = s
		}
	}
	return best, secondScore
}

// Classifier wraps a Model with a pool of engines so it can serve concurrent
// callers.
type Classifier struct {
	model *Model
	pool  sync.Pool
}

// NewClassifier trains a model and wraps it for concurrent use.
func NewClassifier(pairs []TrainingPair) (*Classifier, error) {
	model, err := Train(pairs)
	if err != nil {
		return nil, fmt.Errorf("NewClassifier: %w", err)
	}
	c := &Classifier{model: model}
	c.pool.New = func() any { return model.NewEngine() }
	return c, nil
}

// Predict is the concurrent-safe form of Engine.Predict.
func (c *Classifier) Predict(vendor string) string {
	eng := c.pool.Get().(*Engine)
	defer c.pool.Put(eng)
	return eng.Predict(vendor)
}
