package report

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
	"github.com/amantheshaikh/untainted/pkg/untainted/rules"
	"github.com/amantheshaikh/untainted/pkg/untainted/taxonomy"
)

// Verdicts
const (
	StatusSafe    = "safe"
	StatusNotSafe = "not_safe"
)

// Coverage labels for the source field
const (
	SourceTaxonomyAndAdditives = "taxonomy+additives"
	SourceTaxonomy             = "taxonomy"
	SourceAdditives            = "additives"
	SourceHeuristic            = "heuristic"
)

// UncertainBelow is the confidence under which a match needs verification.
const UncertainBelow = 0.8

// SourceLabel names the coverage given which taxonomies loaded.
func SourceLabel(ingredients, additives bool) string {
	switch {
	case ingredients && additives:
		return SourceTaxonomyAndAdditives
	case ingredients:
		return SourceTaxonomy
	case additives:
		return SourceAdditives
	default:
		return SourceHeuristic
	}
}

// Builder stamps analyses with monotonic ULIDs
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewBuilder creates a new analysis builder
func NewBuilder() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Analysis is the structured result of classifying one ingredient statement
type Analysis struct {
	ID                 string                `json:"id"`
	CreatedAt          time.Time             `json:"created_at"`
	Source             string                `json:"source"`
	Ingredients        []string              `json:"ingredients"`
	Canonical          []string              `json:"canonical"`
	Taxonomy           []taxonomy.Descriptor `json:"taxonomy"`
	Status             string                `json:"status"`
	Hits               []string              `json:"hits"`
	DietHits           []string              `json:"diet_hits"`
	ActiveDiets        []string              `json:"active_diets"`
	AllergyHits        []string              `json:"allergy_hits"`
	AllergyPreferences []string              `json:"allergy_preferences"`
	HealthInsights     []string              `json:"health_insights"`
	Confidence         Confidence            `json:"confidence"`
	UncertainMatches   []Match               `json:"uncertain_matches"`
	NeedsVerification  bool                  `json:"needs_verification"`
	TaxonomyError      string                `json:"taxonomy_error,omitempty"`
	AdditivesError     string                `json:"additives_error,omitempty"`
}

// Safe reports whether the verdict is safe
func (a Analysis) Safe() bool {
	return a.Status == StatusSafe
}

// Confidence summarises match quality
type Confidence struct {
	Average     float64 `json:"average"`
	Ingredients []Match `json:"ingredients"`
}

// Match is the per-ingredient confidence entry
type Match struct {
	Original   string            `json:"original"`
	Display    string            `json:"display"`
	Canonical  string            `json:"canonical"`
	Confidence float64           `json:"confidence"`
	MatchType  resolve.MatchType `json:"match_type"`
	Position   int               `json:"position"`
}

// Diagnostics carries non-fatal taxonomy load failures
type Diagnostics struct {
	TaxonomyError  string `json:"taxonomy_error,omitempty"`
	AdditivesError string `json:"additives_error,omitempty"`
}

// Input is everything an analysis is assembled from
type Input struct {
	Source      string
	Ingredients []resolve.Ingredient
	Outcome     rules.Outcome
	Diagnostics Diagnostics
}

// Build assembles an analysis. Slices are never nil so the JSON shape is
// stable for clients.
func (b *Builder) Build(in Input) Analysis {
	a := Analysis{
		ID:                 b.newID(),
		CreatedAt:          b.now().UTC(),
		Source:             in.Source,
		Ingredients:        make([]string, 0, len(in.Ingredients)),
		Canonical:          make([]string, 0, len(in.Ingredients)),
		Taxonomy:           make([]taxonomy.Descriptor, 0, len(in.Ingredients)),
		Status:             StatusNotSafe,
		Hits:               nonNil(in.Outcome.Hits),
		DietHits:           nonNil(in.Outcome.DietHits),
		ActiveDiets:        nonNil(in.Outcome.ActiveDiets),
		AllergyHits:        nonNil(in.Outcome.AllergyHits),
		AllergyPreferences: nonNil(in.Outcome.AllergyPreferences),
		HealthInsights:     nonNil(in.Outcome.HealthInsights),
		Confidence: Confidence{
			Ingredients: make([]Match, 0, len(in.Ingredients)),
		},
		UncertainMatches: []Match{},
		TaxonomyError:    in.Diagnostics.TaxonomyError,
		AdditivesError:   in.Diagnostics.AdditivesError,
	}
	if a.Source == "" {
		a.Source = SourceHeuristic
	}
	if in.Outcome.Safe() {
		a.Status = StatusSafe
	}

	sum := 0.0
	for _, ing := range in.Ingredients {
		a.Ingredients = append(a.Ingredients, ing.Display)
		a.Canonical = append(a.Canonical, ing.Canonical)
		if ing.Descriptor != nil {
			a.Taxonomy = append(a.Taxonomy, *ing.Descriptor)
		}

		m := Match{
			Original:   ing.Original,
			Display:    ing.Display,
			Canonical:  ing.Canonical,
			Confidence: ing.Confidence,
			MatchType:  ing.MatchType,
			Position:   ing.Position,
		}
		a.Confidence.Ingredients = append(a.Confidence.Ingredients, m)
		if ing.Confidence < UncertainBelow {
			a.UncertainMatches = append(a.UncertainMatches, m)
		}
		sum += ing.Confidence
	}

	// Average stays 0 for an empty list
	if n := len(in.Ingredients); n > 0 {
		a.Confidence.Average = sum / float64(n)
	}
	a.NeedsVerification = len(a.UncertainMatches) > 0
	return a
}

func (b *Builder) newID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(b.now()), b.entropy).String()
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
