package taxonomy

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	relaxStep       = 0.10
	relaxFloor      = 0.65
	relaxMinLength  = 5
	condensedCutoff = 0.70
)

// Fuzzy finds approximate matches in a fixed candidate pool.
type Fuzzy struct {
	pool      []string
	condensed map[string]string // space-free candidate -> original candidate
	keys      []string          // sorted keys of condensed
}

// NewFuzzy builds a matcher over pool. The pool is not copied.
func NewFuzzy(pool []string) *Fuzzy {
	f := &Fuzzy{pool: pool, condensed: make(map[string]string, len(pool))}
	for _, c := range pool {
		key := strings.ReplaceAll(c, " ", "")
		if _, ok := f.condensed[key]; !ok {
			f.condensed[key] = c
			f.keys = append(f.keys, key)
		}
	}
	sort.Strings(f.keys)
	return f
}

// Cutoff returns the minimum similarity accepted for a query of n runes.
func Cutoff(n int) float64 {
	switch {
	case n <= 4:
		return 0.90
	case n <= 8:
		return 0.82
	default:
		return 0.75
	}
}

// Match returns the pool entry closest to query, if any clears the
// length-dependent cutoff. Longer queries get one retry at a relaxed cutoff;
// multi-word queries finally retry with spaces removed on both sides.
func (f *Fuzzy) Match(query string) (string, bool) {
	if f == nil || query == "" || len(f.pool) == 0 {
		return "", false
	}
	n := utf8.RuneCountInString(query)
	cutoff := Cutoff(n)

	if m, ok := best(query, f.pool, cutoff); ok {
		return m, true
	}
	if n >= relaxMinLength {
		relaxed := math.Max(cutoff-relaxStep, relaxFloor)
		if m, ok := best(query, f.pool, relaxed); ok {
			return m, true
		}
	}
	if strings.Contains(query, " ") {
		if m, ok := best(strings.ReplaceAll(query, " ", ""), f.keys, condensedCutoff); ok {
			return f.condensed[m], true
		}
	}
	return "", false
}

type scored struct {
	candidate string
	score     float64
}

// best returns the most similar candidate at or above cutoff. Ties go to
// the candidate closest in length, then to the lexically smaller one.
func best(query string, pool []string, cutoff float64) (string, bool) {
	qlen := utf8.RuneCountInString(query)
	var shortlist []scored
	for _, c := range pool {
		clen := utf8.RuneCountInString(c)
		if lengthBound(qlen, clen) < cutoff {
			continue
		}
		if s := Similarity(query, c); s >= cutoff {
			shortlist = append(shortlist, scored{c, s})
		}
	}
	if len(shortlist) == 0 {
		return "", false
	}
	sort.Slice(shortlist, func(i, j int) bool {
		a, b := shortlist[i], shortlist[j]
		if a.score != b.score {
			return a.score > b.score
		}
		da := abs(utf8.RuneCountInString(a.candidate) - qlen)
		db := abs(utf8.RuneCountInString(b.candidate) - qlen)
		if da != db {
			return da < db
		}
		return a.candidate < b.candidate
	})
	return shortlist[0].candidate, true
}

// Similarity is 1 - editDistance/maxLen, in [0, 1].
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// lengthBound is the best similarity two strings of these lengths can reach.
func lengthBound(la, lb int) float64 {
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(abs(la-lb))/float64(longest)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
