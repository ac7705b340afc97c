package rules

import (
	"fmt"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// Outcome is the result of evaluating one ingredient list.
type Outcome struct {
	Hits               []string // blocking: watchlist (when clean eating is active) and custom avoidance
	DietHits           []string
	AllergyHits        []string
	ActiveDiets        []string
	AllergyPreferences []string
	HealthInsights     []string
}

// Safe reports whether nothing blocks the product. Insights never do.
func (o Outcome) Safe() bool {
	return len(o.Hits) == 0 && len(o.DietHits) == 0 && len(o.AllergyHits) == 0
}

// labelSet keeps labels in first-seen order, ignoring case.
type labelSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *labelSet) add(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	key := strings.ToLower(label)
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, label)
}

// Evaluate runs the watchlist, custom avoidance, diet and allergy checks
// over items and applies the nutrient limits once.
func (b *Book) Evaluate(items []resolve.Ingredient, p prefs.Preferences, nutrients map[string]any) Outcome {
	b.once.Do(b.build)

	active := b.ActiveDiets(p)
	cleanEating := false
	var dietRules []*DietRule
	for _, name := range active {
		rule := b.rules[name]
		if rule.Watchlist {
			cleanEating = true
		}
		if rule.Matchable() && !rule.Watchlist {
			dietRules = append(dietRules, rule)
		}
	}

	var allergyLabels labelSet
	for _, label := range p.Allergies {
		allergyLabels.add(label)
	}
	allergyTokens := b.AllergyTokens(allergyLabels.items)
	avoid := parseAvoidance(p.CustomAvoidance)

	var hits, dietHits, allergyHits, insights labelSet
	for _, item := range items {
		display := strings.TrimSpace(item.Display)
		if display == "" {
			display = item.Canonical
		}

		if b.watchlist.matches(item) {
			if cleanEating {
				hits.add(display)
			} else {
				insights.add(fmt.Sprintf("Contains %s, which is on the clean-eating watchlist", display))
			}
		}

		for _, a := range avoid {
			if a.matches(item) {
				hits.add(a.label + " (Custom Selection)")
			}
		}

		sig := signatureOf(item)
		for _, rule := range dietRules {
			if sig.conflicts(rule.IDs, rule.Tokens) {
				dietHits.add(fmt.Sprintf("%s (%s)", display, rule.Name))
			}
		}

		if len(allergyTokens) > 0 && sig.conflicts(nil, allergyTokens) {
			allergyHits.add(display + " (Allergen)")
		}
	}

	n := ParseNutrients(nutrients)
	for _, hit := range b.limitHits(active, n) {
		dietHits.add(hit)
	}
	for _, insight := range nutrientInsights(n) {
		insights.add(insight)
	}
	for _, insight := range b.conditionInsights(Conditions(p.Conditions, p.HealthRestrictions), n) {
		insights.add(insight)
	}

	return Outcome{
		Hits:               hits.items,
		DietHits:           dietHits.items,
		AllergyHits:        allergyHits.items,
		ActiveDiets:        active,
		AllergyPreferences: allergyLabels.items,
		HealthInsights:     insights.items,
	}
}

// signature is what an ingredient is compared on: its identifier and
// ancestor identifiers, plus the token forms of those and of its surfaces.
type signature struct {
	ids    []string
	tokens []string
}

func signatureOf(item resolve.Ingredient) signature {
	var s signature
	addID := func(id string) {
		id = textnorm.CanonicalID(id)
		if id == "" {
			return
		}
		s.ids = append(s.ids, id)
		if key := tokenKey(textnorm.Suffix(id)); key != "" {
			s.tokens = append(s.tokens, key)
		}
	}
	if d := item.Descriptor; d != nil {
		addID(d.ID)
		for _, pid := range d.ParentIDs {
			addID(pid)
		}
	}
	for _, surface := range []string{item.Canonical, item.Token, item.Display} {
		if key := tokenKey(surface); key != "" {
			s.tokens = append(s.tokens, key)
		}
	}
	return s
}

func (s signature) conflicts(ids, tokens map[string]struct{}) bool {
	for _, id := range s.ids {
		if _, ok := ids[id]; ok {
			return true
		}
	}
	for _, tok := range s.tokens {
		if _, ok := tokens[tok]; ok {
			return true
		}
	}
	return false
}

func (w watchlist) matches(item resolve.Ingredient) bool {
	surfaces := []string{tokenKey(item.Canonical), tokenKey(item.Token)}
	for _, surface := range surfaces {
		if surface == "" {
			continue
		}
		for _, term := range w.terms {
			if strings.Contains(surface, term) {
				return true
			}
		}
	}

	if _, ok := w.termSet[tokenKey(item.Display)]; ok {
		return true
	}
	d := item.Descriptor
	if d == nil {
		return false
	}
	for _, syn := range d.Synonyms {
		if _, ok := w.termSet[tokenKey(syn)]; ok {
			return true
		}
	}
	if _, ok := w.ids[textnorm.CanonicalID(d.ID)]; ok {
		return true
	}
	_, ok := w.suffixes[tokenKey(textnorm.Suffix(d.ID))]
	return ok
}

// avoidance is one custom avoidance entry; commas separate alternative
// spellings and the first one labels the hit.
type avoidance struct {
	label string
	terms []string
}

func parseAvoidance(entries []string) []avoidance {
	var out []avoidance
	for _, entry := range entries {
		var a avoidance
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			key := tokenKey(part)
			if key == "" {
				continue
			}
			if a.label == "" {
				a.label = part
			}
			a.terms = append(a.terms, key)
		}
		if len(a.terms) > 0 {
			out = append(out, a)
		}
	}
	return out
}

func (a avoidance) matches(item resolve.Ingredient) bool {
	canonical := tokenKey(item.Canonical)
	display := tokenKey(item.Display)
	for _, term := range a.terms {
		if strings.Contains(canonical, term) || strings.Contains(display, term) {
			return true
		}
	}
	return false
}
