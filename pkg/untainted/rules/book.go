// Package rules expands curated diet and allergen data through the taxonomy
// graph and evaluates resolved ingredients against a user's preferences.
package rules

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/amantheshaikh/untainted/pkg/untainted/lexicon"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/taxonomy"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// DietRule is the closed form of one diet: every taxonomy identifier that
// conflicts with it and the flat token set derived from those identifiers.
type DietRule struct {
	Name      string
	Seeds     []string
	IDs       map[string]struct{}
	Tokens    map[string]struct{}
	Limits    []string
	Watchlist bool
}

// HasID reports whether id is in the closure.
func (r *DietRule) HasID(id string) bool {
	_, ok := r.IDs[textnorm.CanonicalID(id)]
	return ok
}

// HasToken reports whether the token form of term is in the rule.
func (r *DietRule) HasToken(term string) bool {
	_, ok := r.Tokens[tokenKey(term)]
	return ok
}

// Matchable reports whether the rule conflicts with any ingredient at all,
// as opposed to nutrient-only or watchlist diets.
func (r *DietRule) Matchable() bool {
	return len(r.IDs) > 0 || len(r.Tokens) > 0
}

// Options configures a Book. Zero thresholds take their default. A nil
// Allergens uses the catalog's allergen groups.
type Options struct {
	Thresholds Thresholds
	Allergens  *lexicon.Lexicon
	Logger     *slog.Logger
}

// Book holds the catalog together with the closures derived from it. The
// closures are built on first use, exactly once, and are read-only
// afterwards, so a Book is safe for concurrent use.
type Book struct {
	catalog     *Catalog
	ingredients *taxonomy.Index
	additives   *taxonomy.Index
	thresholds  Thresholds
	logger      *slog.Logger

	allergens *lexicon.Lexicon
	aliases   map[string]string

	once      sync.Once
	rules     map[string]*DietRule
	order     []string
	watchlist watchlist
}

// NewBook creates a Book. Either index may be nil, in which case seeds are
// kept as given and only fallback terms add coverage.
func NewBook(cat *Catalog, ingredients, additives *taxonomy.Index, opts Options) *Book {
	opts.Thresholds = opts.Thresholds.WithDefaults()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Allergens == nil {
		opts.Allergens = lexicon.FromGroups(cat.Allergens)
	}
	b := &Book{
		catalog:     cat,
		ingredients: ingredients,
		additives:   additives,
		thresholds:  opts.Thresholds,
		logger:      opts.Logger,
		allergens:   opts.Allergens,
		aliases:     make(map[string]string),
	}
	for _, d := range cat.Diets {
		name := textnorm.Slug(d.Name)
		b.aliases[name] = name
		for _, alias := range d.Aliases {
			if key := textnorm.Slug(alias); key != "" {
				if _, taken := b.aliases[key]; !taken {
					b.aliases[key] = name
				}
			}
		}
	}
	return b
}

// Catalog returns the catalog the book was built from.
func (b *Book) Catalog() *Catalog {
	return b.catalog
}

// Thresholds returns the nutrient limits in effect.
func (b *Book) Thresholds() Thresholds {
	return b.thresholds
}

// Allergens returns the allergen groups.
func (b *Book) Allergens() *lexicon.Lexicon {
	return b.allergens
}

// Rules returns every diet rule in catalog order.
func (b *Book) Rules() []*DietRule {
	b.once.Do(b.build)
	out := make([]*DietRule, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.rules[name])
	}
	return out
}

// Rule looks up a diet by name or alias.
func (b *Book) Rule(label string) (*DietRule, bool) {
	b.once.Do(b.build)
	name, ok := b.aliases[textnorm.Slug(label)]
	if !ok {
		return nil, false
	}
	r, ok := b.rules[name]
	return r, ok
}

// DietName maps a user label such as "Low FODMAP" or "Diabetic" onto a
// diet name.
func (b *Book) DietName(label string) (string, bool) {
	name, ok := b.aliases[textnorm.Slug(label)]
	return name, ok
}

// ActiveDiets lists the diets selected by p: the dietary preferences first,
// then health restrictions that name a diet. Unknown labels are dropped.
func (b *Book) ActiveDiets(p prefs.Preferences) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, label := range append(append([]string(nil), p.Diets...), p.HealthRestrictions...) {
		name, ok := b.DietName(label)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// AllergyTokens expands allergy labels through the allergen groups. Labels
// outside every group match as themselves.
func (b *Book) AllergyTokens(labels []string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, label := range labels {
		for _, v := range b.allergens.Variants(label) {
			if key := tokenKey(v); key != "" {
				tokens[key] = struct{}{}
			}
		}
	}
	return tokens
}

func (b *Book) build() {
	specs := make(map[string]DietSpec, len(b.catalog.Diets))
	for _, d := range b.catalog.Diets {
		specs[textnorm.Slug(d.Name)] = d
	}

	b.rules = make(map[string]*DietRule, len(specs))
	for _, d := range b.catalog.Diets {
		name := textnorm.Slug(d.Name)
		rule := &DietRule{
			Name:      name,
			Seeds:     canonicalIDs(d.Seeds),
			IDs:       make(map[string]struct{}),
			Tokens:    make(map[string]struct{}),
			Limits:    append([]string(nil), d.Limits...),
			Watchlist: d.Watchlist,
		}
		if len(d.Seeds) > 0 {
			for _, idx := range []*taxonomy.Index{b.ingredients, b.additives} {
				for _, id := range idx.Taxonomy().Descendants(d.Seeds...) {
					rule.IDs[id] = struct{}{}
					if key := tokenKey(textnorm.Suffix(id)); key != "" {
						rule.Tokens[key] = struct{}{}
					}
				}
			}
		}
		for _, term := range b.fallback(name, specs) {
			key := tokenKey(term)
			if key == "" {
				continue
			}
			rule.Tokens[key] = struct{}{}
			rule.IDs[textnorm.CanonicalID(textnorm.Slug(term))] = struct{}{}
		}
		b.rules[name] = rule
		b.order = append(b.order, name)
		b.logger.Debug("diet rule built", "diet", name, "ids", len(rule.IDs), "tokens", len(rule.Tokens))
	}

	b.watchlist = newWatchlist(b.catalog.Watchlist)
}

// fallback gathers the diet's own fallback terms, those of every diet it
// inherits from, and the variants of inherited allergen groups.
func (b *Book) fallback(name string, specs map[string]DietSpec) []string {
	var terms []string
	visited := make(map[string]struct{})
	var walk func(string)
	walk = func(n string) {
		if _, ok := visited[n]; ok {
			return
		}
		visited[n] = struct{}{}
		d, ok := specs[n]
		if !ok {
			return
		}
		terms = append(terms, d.Fallback...)
		for _, group := range d.InheritsAllergens {
			terms = append(terms, b.allergens.Variants(group)...)
		}
		for _, parent := range d.Inherits {
			walk(textnorm.Slug(parent))
		}
	}
	walk(name)
	return terms
}

// watchlist is the compiled clean-eating list.
type watchlist struct {
	terms    []string
	termSet  map[string]struct{}
	ids      map[string]struct{}
	suffixes map[string]struct{}
}

func newWatchlist(spec WatchlistSpec) watchlist {
	w := watchlist{
		termSet:  make(map[string]struct{}),
		ids:      make(map[string]struct{}),
		suffixes: make(map[string]struct{}),
	}
	for _, term := range spec.Terms {
		key := tokenKey(term)
		if key == "" {
			continue
		}
		if _, dup := w.termSet[key]; dup {
			continue
		}
		w.termSet[key] = struct{}{}
		w.terms = append(w.terms, key)
	}
	// Longer terms first so reports stay stable.
	sort.SliceStable(w.terms, func(i, j int) bool { return len(w.terms[i]) > len(w.terms[j]) })
	for _, id := range spec.FlaggedIDs {
		id = textnorm.CanonicalID(id)
		if id == "" {
			continue
		}
		w.ids[id] = struct{}{}
		w.suffixes[tokenKey(textnorm.Suffix(id))] = struct{}{}
	}
	return w
}

func canonicalIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c := textnorm.CanonicalID(id); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// tokenKey is the comparison form used by every rule set: the normalized
// token with hyphens read as spaces.
func tokenKey(s string) string {
	return textnorm.Key(s)
}
