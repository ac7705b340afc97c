// Package locale holds the language preferences shared by the taxonomy
// index, the stoplist and display-name selection.
package locale

import "strings"

// Fallback is the catch-all namespace used by taxonomies for
// language-independent names such as additive codes.
const Fallback = "xx"

// Languages describes which taxonomy languages are consulted and in what order.
type Languages struct {
	Default  string   // configured default language (OFF_LANGUAGE)
	Taxonomy []string // extra languages (OFF_TAXONOMY_LANGS)
}

// New returns Languages with lower-cased, trimmed codes. An empty default
// falls back to "en".
func New(def string, taxonomy []string) Languages {
	def = strings.ToLower(strings.TrimSpace(def))
	if def == "" {
		def = "en"
	}
	extra := make([]string, 0, len(taxonomy))
	for _, l := range taxonomy {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			extra = append(extra, l)
		}
	}
	return Languages{Default: def, Taxonomy: extra}
}

// Preferred returns the lookup order: en, the default language, the
// taxonomy languages, then the catch-all namespace. Duplicates are removed.
func (l Languages) Preferred() []string {
	order := make([]string, 0, len(l.Taxonomy)+3)
	seen := make(map[string]struct{}, cap(order))
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		order = append(order, code)
	}
	add("en")
	add(l.Default)
	for _, code := range l.Taxonomy {
		add(code)
	}
	add(Fallback)
	return order
}

// Active reports whether names in lang are registered as plain tokens.
// Only en and the default language are active.
func (l Languages) Active(lang string) bool {
	lang = strings.ToLower(lang)
	return lang == "en" || lang == l.Default
}
