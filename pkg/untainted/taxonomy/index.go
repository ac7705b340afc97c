package taxonomy

import (
	"sort"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// Source tags which taxonomy a descriptor came from.
const (
	SourceIngredients = "ingredients"
	SourceAdditives   = "additives"
)

const (
	maxDescriptorParents  = 5
	maxDescriptorSynonyms = 8
)

// Index maps normalized text onto taxonomy nodes. It is built once and is
// read-only afterwards.
type Index struct {
	tax    *Taxonomy
	langs  locale.Languages
	source string

	mapping map[string]int
	pool    []string
	fuzzy   *Fuzzy
}

// Descriptor is the summary of a matched node attached to each resolved
// ingredient.
type Descriptor struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Parents   []string `json:"parents,omitempty"`
	ParentIDs []string `json:"parent_ids,omitempty"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Source    string   `json:"source"`
}

// NewIndex builds the lookup table for tax. source is SourceIngredients or
// SourceAdditives and is copied into descriptors.
func NewIndex(tax *Taxonomy, langs locale.Languages, source string) *Index {
	idx := &Index{
		tax:     tax,
		langs:   langs,
		source:  source,
		mapping: make(map[string]int),
	}
	plain := make(map[string]struct{})
	addPlain := func(token string) {
		if token != "" {
			plain[token] = struct{}{}
		}
	}

	for i, n := range tax.Nodes() {
		idx.register(strings.ToLower(n.ID), i, false)
		if slug := n.Slug(); slug != "" {
			idx.register(slug, i, true)
			addPlain(slug)
		}

		for _, lang := range n.nameLangs {
			token := textnorm.NormalizeToken(n.Names[lang])
			if token == "" {
				continue
			}
			if langs.Active(lang) {
				idx.register(token, i, true)
				addPlain(token)
			}
			idx.register(lang+":"+token, i, false)
		}

		for _, lang := range n.synonymLangs {
			for _, syn := range n.Synonyms[lang] {
				token := textnorm.NormalizeToken(syn)
				if token == "" {
					continue
				}
				if langs.Active(lang) {
					idx.register(token, i, false)
					addPlain(token)
				}
				idx.register(lang+":"+token, i, false)
			}
		}
	}

	idx.pool = make([]string, 0, len(plain))
	for token := range plain {
		idx.pool = append(idx.pool, token)
	}
	sort.Strings(idx.pool)
	idx.fuzzy = NewFuzzy(idx.pool)
	return idx
}

// register applies the collision rule: a free key is taken; a preferred
// registration always wins; otherwise the key moves only when it spells the
// new node's own slug and not the current owner's.
func (x *Index) register(key string, node int, prefer bool) {
	if key == "" {
		return
	}
	existing, ok := x.mapping[key]
	if !ok || prefer {
		x.mapping[key] = node
		return
	}
	if existing == node {
		return
	}
	nodes := x.tax.nodes
	if key == nodes[node].Slug() && key != nodes[existing].Slug() {
		x.mapping[key] = node
	}
}

// Taxonomy returns the underlying graph.
func (x *Index) Taxonomy() *Taxonomy {
	if x == nil {
		return nil
	}
	return x.tax
}

// Source returns the descriptor source tag.
func (x *Index) Source() string {
	return x.source
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.tax.Len()
}

// Lookup finds the node for a normalized token, first directly and then
// under each preferred language prefix.
func (x *Index) Lookup(token string) (*Node, bool) {
	if x == nil || token == "" {
		return nil, false
	}
	if i, ok := x.mapping[token]; ok {
		return x.tax.nodes[i], true
	}
	for _, lang := range x.langs.Preferred() {
		if i, ok := x.mapping[lang+":"+token]; ok {
			return x.tax.nodes[i], true
		}
	}
	return nil, false
}

// FuzzyLookup matches token approximately against the plain-token pool and
// returns the node owning the best candidate.
func (x *Index) FuzzyLookup(token string) (*Node, string, bool) {
	if x == nil {
		return nil, "", false
	}
	match, ok := x.fuzzy.Match(token)
	if !ok {
		return nil, "", false
	}
	n, ok := x.Lookup(match)
	return n, match, ok
}

// DisplayName picks the primary name in the first preferred language that
// has one, then any name, then the identifier suffix.
func (x *Index) DisplayName(n *Node) string {
	for _, lang := range x.langs.Preferred() {
		if name, ok := n.Names[lang]; ok && name != "" {
			return name
		}
	}
	for _, lang := range n.nameLangs {
		if name := n.Names[lang]; name != "" {
			return name
		}
	}
	return textnorm.Suffix(n.ID)
}

// Describe summarises n for inclusion in an analysis.
func (x *Index) Describe(n *Node) Descriptor {
	d := Descriptor{
		ID:     n.ID,
		Name:   x.DisplayName(n),
		Source: x.source,
	}

	for _, pid := range x.tax.Ancestors(n.ID, maxDescriptorParents) {
		d.ParentIDs = append(d.ParentIDs, pid)
		if p, ok := x.tax.Node(pid); ok {
			d.Parents = append(d.Parents, x.DisplayName(p))
		}
	}

	seen := map[string]struct{}{textnorm.Key(d.Name): {}}
	for _, lang := range x.synonymOrder(n) {
		for _, syn := range n.Synonyms[lang] {
			key := textnorm.Key(syn)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			d.Synonyms = append(d.Synonyms, syn)
			if len(d.Synonyms) == maxDescriptorSynonyms {
				return d
			}
		}
	}
	return d
}

// synonymOrder lists preferred languages first, then the rest as declared.
func (x *Index) synonymOrder(n *Node) []string {
	order := make([]string, 0, len(n.synonymLangs))
	seen := make(map[string]struct{})
	for _, lang := range x.langs.Preferred() {
		if _, ok := n.Synonyms[lang]; ok {
			order = append(order, lang)
			seen[lang] = struct{}{}
		}
	}
	for _, lang := range n.synonymLangs {
		if _, ok := seen[lang]; !ok {
			order = append(order, lang)
		}
	}
	return order
}
