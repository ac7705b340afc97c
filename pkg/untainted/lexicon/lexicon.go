package lexicon

import (
	"fmt"
	"os"
	"sort"

	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
	"gopkg.in/yaml.v3"
)

// Lexicon stores groups of interchangeable ingredient terms:
//   - allergen categories: dairy -> milk, butter, casein, whey, ghee, ...
//   - label spellings: soy -> soya, soybean, soy bean
//
// Lookups work in both directions: a variant normalizes to its canonical
// group name, and any member expands to the whole group. All terms are
// stored in textnorm.NormalizeToken form.
type Lexicon struct {
	// canonical -> all variants (canonical first)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// Group is one canonical term and its variants, as written in YAML.
type Group struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromGroups builds a lexicon from groups in order; a later group claims
// variants shared with an earlier one.
func FromGroups(groups []Group) *Lexicon {
	lex := New()
	for _, g := range groups {
		lex.AddSynonymGroup(g.Canonical, g.Variants)
	}
	return lex
}

// LoadFromYAML loads synonym groups from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: dairy
//	    variants: [milk, butter, cheese, whey]
//	  - canonical: soy
//	    variants: [soya, soybean, soy bean]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var config struct {
		Synonyms []Group `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return FromGroups(config.Synonyms), nil
}

// AddSynonymGroup adds a group with a canonical form and its variants.
// The canonical form is always the first entry. Re-adding a canonical
// replaces its earlier group.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = textnorm.NormalizeToken(canonical)
	if canonical == "" {
		return
	}

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			if l.reverseIndex[oldV] == canonical {
				delete(l.reverseIndex, oldV)
			}
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)
	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = textnorm.NormalizeToken(v)
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of a term, or the normalized term
// itself when it belongs to no group.
func (l *Lexicon) Normalize(term string) string {
	term = textnorm.NormalizeToken(term)
	if canonical, ok := l.reverseIndex[term]; ok {
		return canonical
	}
	return term
}

// Variants returns every member of the group term belongs to. Unknown terms
// expand to themselves.
func (l *Lexicon) Variants(term string) []string {
	term = textnorm.NormalizeToken(term)

	if variants, ok := l.synonyms[term]; ok {
		return variants
	}
	if canonical, ok := l.reverseIndex[term]; ok {
		return l.synonyms[canonical]
	}
	if term == "" {
		return nil
	}
	return []string{term}
}

// HasSynonyms reports whether term belongs to a group.
func (l *Lexicon) HasSynonyms(term string) bool {
	_, exists := l.reverseIndex[textnorm.NormalizeToken(term)]
	return exists
}

// Canonicals returns the sorted group names.
func (l *Lexicon) Canonicals() []string {
	out := make([]string, 0, len(l.synonyms))
	for c := range l.synonyms {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	totalVariants := 0
	for _, variants := range l.synonyms {
		totalVariants += len(variants)
	}
	return LexiconStats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: totalVariants,
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	SynonymGroups int // Number of canonical forms (synonym groups)
	TotalVariants int // Total number of variants across all groups
}
