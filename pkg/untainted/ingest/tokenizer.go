package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
	"github.com/amantheshaikh/untainted/pkg/untainted/stoplist"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

var (
	segmentRE     = regexp.MustCompile(`[\n\r;]+`)
	percentRE     = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*%`)
	bracketRE     = regexp.MustCompile(`\[[^\]]*\]`)
	protectedRE   = regexp.MustCompile(`\be\d{3,4}[a-z]?\([ivx]+\)`)
	placeholderRE = regexp.MustCompile(`\x{E000}(\d+)\x{E001}`)

	bullets = strings.NewReplacer("•", ",", "·", ",", "●", ",", "▪", ",", "◦", ",")
	parens  = strings.NewReplacer("(", ",", ")", ",")
)

// replacement rewrites a known multi-word ingredient into a form that
// survives stopword splitting.
type replacement struct {
	pattern *regexp.Regexp
	with    string
}

var specialReplacements = []replacement{
	{regexp.MustCompile(`(?i)\bmono-\s+and\s+diglycerides\b`), "mono-and-diglycerides"},
}

// trimCutset is stripped from both ends of every token.
const trimCutset = " \t.,-:*_'\""

// Tokenizer splits an ingredient statement into raw ingredient phrases.
type Tokenizer struct {
	stops *stoplist.Manager
}

// NewTokenizer creates a tokenizer that splits on the given stoplist. A nil
// stoplist uses the English defaults.
func NewTokenizer(stops *stoplist.Manager) *Tokenizer {
	if stops == nil {
		stops = stoplist.NewManager(locale.New("en", nil))
	}
	return &Tokenizer{stops: stops}
}

// Stoplist returns the stoplist used for splitting.
func (t *Tokenizer) Stoplist() *stoplist.Manager {
	return t.stops
}

// Tokenize splits text into raw ingredient phrases, in label order.
//
// Example:
//
//	"Wheat flour (63%), Raising agents (INS 500 (ii)), salt and sugar"
//	-> ["Wheat flour", "Raising agents", "e500(ii)", "salt", "sugar"]
func (t *Tokenizer) Tokenize(text string) []string {
	text = bullets.Replace(textnorm.NormalizeDashes(text))

	var tokens []string
	for _, seg := range segmentRE.Split(text, -1) {
		tokens = t.segment(seg, tokens)
	}
	return tokens
}

func (t *Tokenizer) segment(seg string, tokens []string) []string {
	for _, r := range specialReplacements {
		seg = r.pattern.ReplaceAllString(seg, r.with)
	}
	seg = textnorm.CanonicalizeAdditiveCodes(seg)
	seg = percentRE.ReplaceAllString(seg, "")

	// e500(ii) must keep its parenthesis through flattening
	var saved []string
	seg = protectedRE.ReplaceAllStringFunc(seg, func(m string) string {
		saved = append(saved, m)
		return fmt.Sprintf("\uE000%d\uE001", len(saved)-1)
	})
	seg = parens.Replace(seg)
	seg = placeholderRE.ReplaceAllStringFunc(seg, func(m string) string {
		i, err := strconv.Atoi(placeholderRE.FindStringSubmatch(m)[1])
		if err != nil || i >= len(saved) {
			return ""
		}
		return saved[i]
	})

	seg = bracketRE.ReplaceAllString(seg, " ")

	for _, piece := range strings.FieldsFunc(seg, isPieceSeparator) {
		piece = strings.Join(strings.Fields(piece), " ")
		if piece == "" {
			continue
		}
		if t.stops.IsExempt(piece) {
			tokens = t.appendToken(tokens, piece)
			continue
		}
		for _, part := range t.stops.Split(piece) {
			tokens = t.appendToken(tokens, part)
		}
	}
	return tokens
}

// isPieceSeparator splits phrases on commas and on class-name colons
// ("Emulsifier: e471").
func isPieceSeparator(r rune) bool {
	return r == ',' || r == ':'
}

func (t *Tokenizer) appendToken(tokens []string, raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), trimCutset)
	norm := textnorm.NormalizeToken(raw)
	if norm == "" || t.stops.IsStop(norm) {
		return tokens
	}
	return append(tokens, raw)
}
