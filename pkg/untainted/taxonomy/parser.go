package taxonomy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

var (
	headerRE    = regexp.MustCompile(`(?i)^#\s*ingredient/(\S+)`)
	parentRE    = regexp.MustCompile(`^#\s*<\s*(\S+)`)
	stopwordsRE = regexp.MustCompile(`(?i)^stopwords[;:]\s*([a-z]{2}(?:-[a-z0-9]+)?)\s*:(.*)$`)
	langLineRE  = regexp.MustCompile(`(?i)^([a-z]{2}(?:-[a-z0-9]+)?)\s*:(.*)$`)
	langCodeRE  = regexp.MustCompile(`(?i)^[a-z]{2}$`)
)

const maxLineSize = 1 << 20

// ParseFile parses the taxonomy file at path.
func ParseFile(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer f.Close()

	tax, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	return tax, nil
}

// Parse reads a taxonomy in the block grammar:
//
//	# ingredient/palm-oil
//	#< en:vegetable-oil
//	en: Palm oil, palm fat
//	fr: huile de palme
//	synonyms: en: palmolein
//	parents: en:vegetable-oil
//	stopwords:en: and, with
//
// Blocks end at a blank line. Parent references are linked after the whole
// input has been read.
func Parse(r io.Reader) (*Taxonomy, error) {
	p := &parser{tax: newTaxonomy()}
	p.reset()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		p.line(strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	p.finalize()
	p.tax.link()
	return p.tax, nil
}

type parser struct {
	tax       *Taxonomy
	cur       *Node
	slug      string
	anonymous int
}

func (p *parser) reset() {
	p.cur = newNode()
	p.slug = ""
}

func (p *parser) line(line string) {
	switch {
	case line == "":
		p.finalize()

	case strings.HasPrefix(line, "#"):
		if m := headerRE.FindStringSubmatch(line); m != nil {
			p.finalize()
			p.slug = m[1]
			return
		}
		if m := parentRE.FindStringSubmatch(line); m != nil {
			p.cur.addParent(m[1])
		}

	case stopwordsRE.MatchString(line):
		m := stopwordsRE.FindStringSubmatch(line)
		p.tax.addStopwords(strings.ToLower(m[1]), splitList(m[2]))

	case strings.HasPrefix(line, "<"):
		if m := langLineRE.FindStringSubmatch(strings.TrimSpace(line[1:])); m != nil {
			p.cur.addSynonym(m[1], strings.TrimSpace(m[2]))
		}

	case !strings.Contains(line, ":"):
		p.finalize()
		p.slug = line

	default:
		field, value, _ := strings.Cut(line, ":")
		p.field(strings.ToLower(strings.TrimSpace(field)), strings.TrimSpace(value))
	}
}

func (p *parser) field(field, value string) {
	switch {
	case langCodeRE.MatchString(field):
		p.cur.addName(field, value)

	case field == "synonyms":
		lang, list := splitLang(value)
		for _, s := range splitList(list) {
			p.cur.addSynonym(lang, s)
		}

	case field == "name":
		lang, text := splitLang(value)
		p.cur.addName(lang, text)

	case field == "parents":
		for _, id := range splitList(value) {
			p.cur.addParent(id)
		}

	case field == "children":
		// derived from parents when linking

	default:
		p.cur.Properties[field] = value
	}
}

func (p *parser) finalize() {
	defer p.reset()
	if p.cur.empty() {
		return
	}
	p.cur.ID = p.identifier()
	p.tax.add(p.cur)
}

// identifier builds lang:value from the block slug, or from the first
// primary name when the block declared none.
func (p *parser) identifier() string {
	if p.slug != "" {
		lang, value := textnorm.DefaultNamespace, p.slug
		if l, v, ok := strings.Cut(p.slug, ":"); ok {
			lang, value = l, v
		}
		return strings.ToLower(strings.TrimSpace(lang)) + ":" + slugValue(value)
	}

	lang := textnorm.DefaultNamespace
	if _, ok := p.cur.Names[lang]; !ok && len(p.cur.nameLangs) > 0 {
		lang = p.cur.nameLangs[0]
	}
	if name, ok := p.cur.Names[lang]; ok {
		if v := slugValue(name); v != "" {
			return lang + ":" + v
		}
	}
	p.anonymous++
	return fmt.Sprintf("%s:ingredient-%d", lang, p.anonymous)
}

func slugValue(value string) string {
	if s := textnorm.Slug(value); s != "" {
		return s
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// splitLang splits "en: a, b" into ("en", "a, b"). Values without a
// language prefix are taken to be English.
func splitLang(value string) (string, string) {
	if m := langLineRE.FindStringSubmatch(value); m != nil {
		return strings.ToLower(m[1]), strings.TrimSpace(m[2])
	}
	return textnorm.DefaultNamespace, value
}
