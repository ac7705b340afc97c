// Package textnorm implements the string normalisation shared by the
// taxonomy index, the tokenizer and the rule engine. Every lookup key in
// the system goes through NormalizeToken.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNamespace is applied to identifiers that carry no language prefix.
const DefaultNamespace = "en"

var dashes = strings.NewReplacer(
	"‐", "-", "‑", "-", "‒", "-", "–", "-",
	"—", "-", "―", "-", "−", "-",
)

var (
	// INS 500 (ii), E 500(ii), e500 ii are all spellings of one code.
	additiveCodeRE  = regexp.MustCompile(`(?i)(\bvitamin[\s-]+)?\b(ins|e)[\s-]*(\d{3,4})([a-z]?)\b(?:\s*\(\s*([ivx]+)\s*\))?`)
	additiveTokenRE = regexp.MustCompile(`^e\d{3,4}[a-z]?(?:\([ivx]+\))?$`)
)

// NormalizeDashes maps the unicode dash family onto ASCII hyphen.
func NormalizeDashes(s string) string {
	return dashes.Replace(s)
}

// Fold strips diacritics ("crème" -> "creme").
func Fold(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeToken case-folds text and reduces it to [a-z0-9+- ] with single
// spaces. Additive codes keep their sub-classification parenthesis, so
// "E500(ii)" and "E 500 (ii)" both become "e500(ii)".
func NormalizeToken(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	s = Fold(NormalizeDashes(s))

	if compact := strings.Join(strings.Fields(s), ""); additiveTokenRE.MatchString(compact) {
		return compact
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Key is the comparison form of a term: the normalized token with hyphens
// read as spaces, so "Wheat-flour" and "wheat flour" compare equal.
func Key(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(NormalizeToken(s), "-", " ")), " ")
}

// CanonicalizeAdditiveCodes rewrites INS/E codes inside free text to the
// compact e<digits>[(<roman>)] form. "Vitamin E 300 mg" is a dose, not
// an additive, and is left alone.
func CanonicalizeAdditiveCodes(text string) string {
	return additiveCodeRE.ReplaceAllStringFunc(text, func(m string) string {
		sub := additiveCodeRE.FindStringSubmatch(m)
		if sub[1] != "" && strings.EqualFold(sub[2], "e") {
			return m
		}
		code := sub[1] + "e" + sub[3] + strings.ToLower(sub[4])
		if sub[5] != "" {
			code += "(" + strings.ToLower(sub[5]) + ")"
		}
		return code
	})
}

// IsAdditiveCode reports whether a normalized token is an E-number.
func IsAdditiveCode(token string) bool {
	return additiveTokenRE.MatchString(token)
}

// Titleize capitalises each space-separated word; words already written
// entirely in upper case are kept as they are.
func Titleize(token string) string {
	words := strings.Fields(token)
	for i, w := range words {
		if hasLetter(w) && w == strings.ToUpper(w) {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Suffix returns the part of a namespaced identifier after "lang:".
func Suffix(id string) string {
	if _, after, ok := strings.Cut(id, ":"); ok {
		return after
	}
	return id
}

// CanonicalID lower-cases an identifier and applies the default namespace
// when none is present.
func CanonicalID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}
	if !strings.Contains(id, ":") {
		return DefaultNamespace + ":" + id
	}
	return id
}

// Slug turns a label such as "Low FODMAP" into a hyphenated key ("low-fodmap").
func Slug(label string) string {
	s := strings.ReplaceAll(NormalizeToken(label), " ", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
