// Package resolve maps raw label phrases onto taxonomy entries and scores
// each match.
package resolve

import (
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/amantheshaikh/untainted/pkg/untainted/taxonomy"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// MatchType records how a phrase was resolved.
type MatchType string

const (
	Exact     MatchType = "exact"
	Synonym   MatchType = "synonym"
	Fuzzy     MatchType = "fuzzy"
	Heuristic MatchType = "heuristic"
)

// Confidence per match type. Fuzzy confidence depends on query length.
const (
	ConfidenceExact     = 1.0
	ConfidenceSynonym   = 0.95
	ConfidenceHeuristic = 0.5
)

// DefaultCacheSize bounds the per-token resolution memo.
const DefaultCacheSize = 4096

// FuzzyConfidence returns the confidence of a fuzzy match for a query of n runes.
func FuzzyConfidence(n int) float64 {
	switch {
	case n <= 4:
		return 0.90
	case n <= 8:
		return 0.82
	default:
		return 0.75
	}
}

// Ingredient is one resolved unit of an ingredient statement. The
// Descriptor may be shared between results and must not be modified.
type Ingredient struct {
	Original   string               `json:"original"`
	Token      string               `json:"token"`
	Canonical  string               `json:"canonical"`
	Display    string               `json:"display"`
	Descriptor *taxonomy.Descriptor `json:"taxonomy,omitempty"`
	Confidence float64              `json:"confidence"`
	MatchType  MatchType            `json:"match_type"`
	Position   int                  `json:"position"`
}

// Options configures a Resolver.
type Options struct {
	CacheSize int // 0 selects DefaultCacheSize, negative disables the cache
}

// Resolver resolves phrases against an ingredient index and an optional
// additive index. Either index may be nil; with neither, every phrase
// resolves heuristically. A Resolver is safe for concurrent use.
type Resolver struct {
	ingredients *taxonomy.Index
	additives   *taxonomy.Index
	cache       *lru.Cache[string, Ingredient]
}

// New creates a resolver over the given indexes.
func New(ingredients, additives *taxonomy.Index, opts Options) *Resolver {
	r := &Resolver{ingredients: ingredients, additives: additives}
	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		if c, err := lru.New[string, Ingredient](size); err == nil {
			r.cache = c
		}
	}
	return r
}

// Ingredients returns the ingredient index, which may be nil.
func (r *Resolver) Ingredients() *taxonomy.Index {
	return r.ingredients
}

// Additives returns the additive index, which may be nil.
func (r *Resolver) Additives() *taxonomy.Index {
	return r.additives
}

// Resolve maps one raw phrase. It reports false only when the phrase
// normalizes to nothing.
func (r *Resolver) Resolve(raw string) (Ingredient, bool) {
	token := textnorm.NormalizeToken(raw)
	if token == "" {
		return Ingredient{}, false
	}

	if r.cache != nil {
		if ing, ok := r.cache.Get(token); ok {
			ing.Original = raw
			return ing, true
		}
	}

	ing := r.resolveToken(token)
	if r.cache != nil {
		r.cache.Add(token, ing)
	}
	ing.Original = raw
	return ing, true
}

// ResolveAll resolves phrases in order, drops later duplicates of a
// canonical token, and numbers the survivors from 1.
func (r *Resolver) ResolveAll(raws []string) []Ingredient {
	out := make([]Ingredient, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		ing, ok := r.Resolve(raw)
		if !ok {
			continue
		}
		if _, dup := seen[ing.Canonical]; dup {
			continue
		}
		seen[ing.Canonical] = struct{}{}
		ing.Position = len(out) + 1
		out = append(out, ing)
	}
	return out
}

func (r *Resolver) resolveToken(token string) Ingredient {
	for _, idx := range []*taxonomy.Index{r.ingredients, r.additives} {
		if n, ok := idx.Lookup(token); ok {
			kind, conf := Synonym, ConfidenceSynonym
			if isSlug(token, n.Slug()) {
				kind, conf = Exact, ConfidenceExact
			}
			return matched(token, idx, n, kind, conf)
		}
	}

	for _, idx := range []*taxonomy.Index{r.additives, r.ingredients} {
		if n, _, ok := idx.FuzzyLookup(token); ok {
			conf := FuzzyConfidence(utf8.RuneCountInString(token))
			return matched(token, idx, n, Fuzzy, conf)
		}
	}

	return Ingredient{
		Token:      token,
		Canonical:  token,
		Display:    textnorm.Titleize(token),
		Confidence: ConfidenceHeuristic,
		MatchType:  Heuristic,
	}
}

func matched(token string, idx *taxonomy.Index, n *taxonomy.Node, kind MatchType, conf float64) Ingredient {
	d := idx.Describe(n)
	return Ingredient{
		Token:      token,
		Canonical:  n.Slug(),
		Display:    d.Name,
		Descriptor: &d,
		Confidence: conf,
		MatchType:  kind,
	}
}

// isSlug treats "wheat flour" and "wheat-flour" as the same spelling.
func isSlug(token, slug string) bool {
	return token == slug || token == strings.ReplaceAll(slug, "-", " ")
}
