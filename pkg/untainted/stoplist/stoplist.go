// Package stoplist manages the stopword phrases that separate ingredient
// names in a label statement ("wheat flour and salt").
package stoplist

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// DefaultEnglish are the connective phrases always treated as delimiters.
var DefaultEnglish = []string{
	"and", "with", "contains", "containing",
	"made of", "made from", "made with",
	"may contain", "including", "includes",
	"ingredients", "other ingredients",
	"trace", "traces", "total", "per", "into",
}

// DefaultExempt are phrases that contain a stopword but name one ingredient.
var DefaultExempt = []string{
	"mono- and diglycerides",
	"mono-and-diglycerides",
	"mono and diglycerides",
}

var keptRE = regexp.MustCompile(`\x{E002}(\d+)\x{E003}`)

// Manager holds stopword phrases per language. Phrases for inactive
// languages are ignored. A Manager is mutated only while it is being set up;
// after that it is read-only and safe for concurrent use.
type Manager struct {
	langs   locale.Languages
	stops   map[string]map[string]struct{} // language -> phrases
	exempt  map[string]struct{}
	pattern *regexp.Regexp
	shield  *regexp.Regexp // exempt phrases
}

// NewManager creates a manager seeded with DefaultEnglish and DefaultExempt.
func NewManager(langs locale.Languages) *Manager {
	m := &Manager{
		langs:  langs,
		stops:  make(map[string]map[string]struct{}),
		exempt: make(map[string]struct{}),
	}
	for _, e := range DefaultExempt {
		m.AddExempt(e)
	}
	m.Merge("en", DefaultEnglish)
	return m
}

// AddExempt registers a phrase that is never split, even when it appears
// inside a longer phrase.
func (m *Manager) AddExempt(phrase string) {
	phrase = strings.ToLower(strings.Join(strings.Fields(phrase), " "))
	if phrase == "" {
		return
	}
	m.exempt[phrase] = struct{}{}
	exempt := make([]string, 0, len(m.exempt))
	for e := range m.exempt {
		exempt = append(exempt, e)
	}
	m.shield = alternation(exempt)
}

// Merge adds phrases for lang, typically the stopwords declared in a
// taxonomy file. Inactive languages are skipped.
func (m *Manager) Merge(lang string, phrases []string) {
	lang = strings.ToLower(lang)
	if !m.langs.Active(lang) {
		return
	}
	set, ok := m.stops[lang]
	if !ok {
		set = make(map[string]struct{})
		m.stops[lang] = set
	}
	for _, p := range phrases {
		if p = textnorm.NormalizeToken(p); p != "" {
			set[p] = struct{}{}
		}
	}
	m.compile()
}

// MergeAll merges a language -> phrases table.
func (m *Manager) MergeAll(table map[string][]string) {
	for lang, phrases := range table {
		m.Merge(lang, phrases)
	}
}

// IsStop reports whether a normalized token is exactly a stopword phrase.
func (m *Manager) IsStop(token string) bool {
	for _, set := range m.stops {
		if _, ok := set[token]; ok {
			return true
		}
	}
	return false
}

// IsExempt reports whether phrase must be kept whole.
func (m *Manager) IsExempt(phrase string) bool {
	_, ok := m.exempt[strings.ToLower(strings.Join(strings.Fields(phrase), " "))]
	return ok
}

// All returns every phrase, longest first.
func (m *Manager) All() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, set := range m.stops {
		for p := range set {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if len(result[i]) != len(result[j]) {
			return len(result[i]) > len(result[j])
		}
		return result[i] < result[j]
	})
	return result
}

// Split breaks phrase at every stopword occurrence. Matching is
// case-insensitive and whole-word, longest phrase first. Exempt phrases
// inside phrase are left intact. Empty pieces are returned as well; callers
// trim and filter.
func (m *Manager) Split(phrase string) []string {
	if m.pattern == nil {
		return []string{phrase}
	}
	var kept []string
	if m.shield != nil {
		phrase = m.shield.ReplaceAllStringFunc(phrase, func(s string) string {
			kept = append(kept, s)
			return fmt.Sprintf("\uE002%d\uE003", len(kept)-1)
		})
	}
	parts := m.pattern.Split(phrase, -1)
	if len(kept) == 0 {
		return parts
	}
	for i, part := range parts {
		parts[i] = keptRE.ReplaceAllStringFunc(part, func(s string) string {
			n, err := strconv.Atoi(keptRE.FindStringSubmatch(s)[1])
			if err != nil || n >= len(kept) {
				return ""
			}
			return kept[n]
		})
	}
	return parts
}

func (m *Manager) compile() {
	m.pattern = alternation(m.All())
}

// alternation compiles phrases into one whole-word, case-insensitive
// pattern, longest phrase first. Inner whitespace matches any run of spaces.
func alternation(phrases []string) *regexp.Regexp {
	if len(phrases) == 0 {
		return nil
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	alts := make([]string, len(phrases))
	for i, p := range phrases {
		words := strings.Fields(p)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		alts[i] = strings.Join(words, `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}
