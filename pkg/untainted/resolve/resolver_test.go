package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amantheshaikh/untainted/internal/testfixture"
	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
	"github.com/amantheshaikh/untainted/pkg/untainted/taxonomy"
)

func fixtureResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	langs := locale.New("en", nil)
	ing, err := taxonomy.Parse(strings.NewReader(testfixture.Ingredients))
	require.NoError(t, err)
	add, err := taxonomy.Parse(strings.NewReader(testfixture.Additives))
	require.NoError(t, err)
	return New(
		taxonomy.NewIndex(ing, langs, taxonomy.SourceIngredients),
		taxonomy.NewIndex(add, langs, taxonomy.SourceAdditives),
		opts,
	)
}

func TestResolve(t *testing.T) {
	r := fixtureResolver(t, Options{})

	tests := []struct {
		raw        string
		canonical  string
		display    string
		matchType  MatchType
		confidence float64
		source     string
	}{
		{"apple", "apple", "Apple", Exact, 1.0, taxonomy.SourceIngredients},
		{"Apples", "apple", "Apple", Synonym, 0.95, taxonomy.SourceIngredients},
		{"Wheat Flour", "wheat-flour", "Wheat flour", Exact, 1.0, taxonomy.SourceIngredients},
		{"E500(ii)", "e500ii", "E500(ii)", Synonym, 0.95, taxonomy.SourceAdditives},
		{"Baking soda", "e500ii", "E500(ii)", Synonym, 0.95, taxonomy.SourceAdditives},
		{"bananna", "banana", "Banana", Fuzzy, 0.82, taxonomy.SourceIngredients},
		{"lecitin", "e322", "E322", Fuzzy, 0.82, taxonomy.SourceAdditives},
		{"monosodium glutamat", "e621", "E621", Fuzzy, 0.75, taxonomy.SourceAdditives},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ing, ok := r.Resolve(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.raw, ing.Original)
			assert.Equal(t, tt.canonical, ing.Canonical)
			assert.Equal(t, tt.display, ing.Display)
			assert.Equal(t, tt.matchType, ing.MatchType)
			assert.InDelta(t, tt.confidence, ing.Confidence, 1e-9)
			require.NotNil(t, ing.Descriptor)
			assert.Equal(t, tt.source, ing.Descriptor.Source)
		})
	}
}

func TestResolveHeuristic(t *testing.T) {
	r := fixtureResolver(t, Options{})
	ing, ok := r.Resolve("Xanthan gum")
	require.True(t, ok)
	assert.Equal(t, Heuristic, ing.MatchType)
	assert.Equal(t, "xanthan gum", ing.Canonical)
	assert.Equal(t, "Xanthan Gum", ing.Display)
	assert.Equal(t, ConfidenceHeuristic, ing.Confidence)
	assert.Nil(t, ing.Descriptor)

	_, ok = r.Resolve(" !!! ")
	assert.False(t, ok)
}

func TestResolveWithoutTaxonomy(t *testing.T) {
	r := New(nil, nil, Options{})
	for _, raw := range []string{"milk", "apples", "E500(ii)"} {
		ing, ok := r.Resolve(raw)
		require.True(t, ok)
		assert.Equal(t, Heuristic, ing.MatchType, raw)
		assert.LessOrEqual(t, ing.Confidence, 0.5, raw)
	}
}

func TestResolveAllDedupAndPositions(t *testing.T) {
	r := fixtureResolver(t, Options{})
	got := r.ResolveAll([]string{"Milk", "milk", "whole milk", "", "sugar", "Sucrose", "xanthan gum"})
	require.Len(t, got, 3)
	assert.Equal(t, "milk", got[0].Canonical)
	assert.Equal(t, "Milk", got[0].Original)
	assert.Equal(t, "sugar", got[1].Canonical)
	assert.Equal(t, "xanthan gum", got[2].Canonical)
	for i, ing := range got {
		assert.Equal(t, i+1, ing.Position)
	}
}

func TestResolveIdempotent(t *testing.T) {
	for _, opts := range []Options{{}, {CacheSize: -1}, {CacheSize: 1}} {
		r := fixtureResolver(t, opts)
		for _, raw := range []string{"apples", "bananna", "E500(ii)", "xanthan gum", "apple"} {
			first, _ := r.Resolve(raw)
			second, _ := r.Resolve(raw)
			assert.Equal(t, first, second, "raw=%q opts=%+v", raw, opts)
		}
	}
}

func TestConfidenceOrdering(t *testing.T) {
	fuzzy := []float64{FuzzyConfidence(3), FuzzyConfidence(6), FuzzyConfidence(12)}
	assert.Equal(t, []float64{0.90, 0.82, 0.75}, fuzzy)
	assert.GreaterOrEqual(t, ConfidenceExact, ConfidenceSynonym)
	for _, f := range fuzzy {
		assert.GreaterOrEqual(t, ConfidenceSynonym, f)
		assert.GreaterOrEqual(t, f, ConfidenceHeuristic)
	}
}
