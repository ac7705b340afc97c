// Package taxonomy loads the block-structured ingredient/additive taxonomy
// and answers lookups against it.
//
// Nodes are kept in an arena indexed by position, with explicit parent and
// child edge lists built once when the file has been fully read. After
// Parse returns, a Taxonomy is never mutated and is safe for concurrent use.
package taxonomy

import (
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// Taxonomy is the parsed, linked node graph plus any stopword declarations.
type Taxonomy struct {
	nodes     []*Node
	byID      map[string]int
	stopwords map[string][]string
}

func newTaxonomy() *Taxonomy {
	return &Taxonomy{
		byID:      make(map[string]int),
		stopwords: make(map[string][]string),
	}
}

// Len returns the number of nodes.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Nodes returns all nodes in declaration order.
func (t *Taxonomy) Nodes() []*Node {
	if t == nil {
		return nil
	}
	return t.nodes
}

// Node looks a node up by identifier. Identifiers without a namespace are
// taken to be in "en".
func (t *Taxonomy) Node(id string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.byID[textnorm.CanonicalID(id)]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// Stopwords returns normalized stopword phrases per language.
func (t *Taxonomy) Stopwords() map[string][]string {
	if t == nil {
		return nil
	}
	return t.stopwords
}

// Parents returns the resolved direct parents of n.
func (t *Taxonomy) Parents(n *Node) []*Node {
	return t.resolve(n.parents)
}

// Descendants returns every identifier reachable from the given seeds via
// child edges, seeds included, in breadth-first order. Seeds missing from
// the taxonomy are returned as given.
func (t *Taxonomy) Descendants(seeds ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	var queue []int

	for _, seed := range seeds {
		id := textnorm.CanonicalID(seed)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if t != nil {
			if i, ok := t.byID[id]; ok {
				queue = append(queue, i)
			}
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, c := range t.nodes[i].children {
			id := t.nodes[c].ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			queue = append(queue, c)
		}
	}
	return out
}

// Ancestors returns up to limit ancestor identifiers of id, nearest first.
// A non-positive limit means no limit.
func (t *Taxonomy) Ancestors(id string, limit int) []string {
	if t == nil {
		return nil
	}
	start, ok := t.byID[textnorm.CanonicalID(id)]
	if !ok {
		return nil
	}
	var out []string
	seen := map[int]struct{}{start: {}}
	queue := []int{start}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, p := range t.nodes[i].parents {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, t.nodes[p].ID)
			if limit > 0 && len(out) == limit {
				return out
			}
			queue = append(queue, p)
		}
	}
	return out
}

func (t *Taxonomy) resolve(idx []int) []*Node {
	out := make([]*Node, len(idx))
	for i, n := range idx {
		out[i] = t.nodes[n]
	}
	return out
}

// add stores a finalized node. A later block with the same identifier
// replaces the earlier one in place.
func (t *Taxonomy) add(n *Node) {
	if i, ok := t.byID[n.ID]; ok {
		t.nodes[i] = n
		return
	}
	t.byID[n.ID] = len(t.nodes)
	t.nodes = append(t.nodes, n)
}

// link resolves declared parent identifiers into arena edges. Parents that
// were never declared are dropped.
func (t *Taxonomy) link() {
	for i, n := range t.nodes {
		n.parents = n.parents[:0]
		for _, pid := range n.ParentIDs {
			p, ok := t.byID[pid]
			if !ok || p == i {
				continue
			}
			n.parents = append(n.parents, p)
			t.nodes[p].children = append(t.nodes[p].children, i)
		}
	}
}

func (t *Taxonomy) addStopwords(lang string, terms []string) {
	existing := t.stopwords[lang]
	seen := make(map[string]struct{}, len(existing)+len(terms))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, term := range terms {
		term = textnorm.NormalizeToken(term)
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		existing = append(existing, term)
	}
	t.stopwords[lang] = existing
}
