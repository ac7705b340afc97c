package taxonomy

import (
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

// Node is one category of the ingredient or additive hierarchy.
type Node struct {
	ID         string
	Names      map[string]string   // language -> primary display name
	Synonyms   map[string][]string // language -> synonyms, deduplicated case-insensitively
	ParentIDs  []string            // declared parents, namespace-defaulted
	Properties map[string]string

	nameLangs    []string
	synonymLangs []string

	// arena edges, valid once the taxonomy is linked
	parents  []int
	children []int
}

func newNode() *Node {
	return &Node{
		Names:      make(map[string]string),
		Synonyms:   make(map[string][]string),
		Properties: make(map[string]string),
	}
}

// Slug is the normalized local part of the identifier.
func (n *Node) Slug() string {
	return textnorm.NormalizeToken(textnorm.Suffix(n.ID))
}

// addName registers a comma/semicolon separated name list. The first value
// takes the primary slot when it is still empty; everything else becomes a
// synonym.
func (n *Node) addName(lang, value string) {
	parts := splitList(value)
	if len(parts) == 0 {
		return
	}
	lang = strings.ToLower(lang)
	first, rest := parts[0], parts[1:]
	if existing, ok := n.Names[lang]; !ok {
		n.Names[lang] = first
		n.nameLangs = append(n.nameLangs, lang)
	} else if !strings.EqualFold(existing, first) {
		n.addSynonym(lang, first)
	}
	for _, s := range rest {
		n.addSynonym(lang, s)
	}
}

func (n *Node) addSynonym(lang, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	lang = strings.ToLower(lang)
	list, ok := n.Synonyms[lang]
	for _, s := range list {
		if strings.EqualFold(s, value) {
			return
		}
	}
	if !ok {
		n.synonymLangs = append(n.synonymLangs, lang)
	}
	n.Synonyms[lang] = append(list, value)
}

func (n *Node) addParent(id string) {
	id = textnorm.CanonicalID(id)
	if id == "" {
		return
	}
	for _, p := range n.ParentIDs {
		if p == id {
			return
		}
	}
	n.ParentIDs = append(n.ParentIDs, id)
}

func (n *Node) empty() bool {
	return len(n.Names) == 0 && len(n.Synonyms) == 0
}

func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
