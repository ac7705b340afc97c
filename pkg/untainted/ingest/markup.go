package ingest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup returns the text content of an HTML ingredient statement,
// such as the allergen-highlighted lists served by product databases:
//
//	Sugar, <span class="allergen">milk</span> powder<br>Salt
//
// Line-level elements become newlines so they still separate segments.
// Text without markup is returned unchanged.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				buf.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.P, atom.Div, atom.Li, atom.Tr:
				buf.WriteByte('\n')
			}
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
