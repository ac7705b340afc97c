package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amantheshaikh/untainted/pkg/untainted/ingest"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
)

type evaluator struct {
	book     *Book
	pipeline *ingest.Pipeline
}

func newEvaluator(t *testing.T, opts Options) evaluator {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	ing, add := fixtureIndexes(t)
	return evaluator{
		book:     NewBook(cat, ing, add, opts),
		pipeline: ingest.NewPipeline(ingest.NewTokenizer(nil), resolve.New(ing, add, resolve.Options{})),
	}
}

func (e evaluator) run(text string, p prefs.Preferences, nutrients map[string]any) Outcome {
	return e.book.Evaluate(e.pipeline.Process(text).Ingredients, p, nutrients)
}

func TestEvaluateScenarios(t *testing.T) {
	e := newEvaluator(t, Options{})

	tests := []struct {
		name     string
		text     string
		prefs    prefs.Preferences
		safe     bool
		dietHits []string
	}{
		{
			name:  "vegan fruit",
			text:  "apples, bananas",
			prefs: prefs.Preferences{Diets: []string{"vegan"}},
			safe:  true,
		},
		{
			name:     "vegan honey",
			text:     "apples, honey",
			prefs:    prefs.Preferences{Diets: []string{"vegan"}},
			dietHits: []string{"Honey (vegan)"},
		},
		{
			name:     "only the conflicting diet is tagged",
			text:     "wheat, vegetables",
			prefs:    prefs.Preferences{Diets: []string{"vegan", "gluten-free"}},
			dietHits: []string{"Wheat (gluten-free)"},
		},
		{
			name:     "descendant of a seed",
			text:     "whey, salt",
			prefs:    prefs.Preferences{Diets: []string{"vegan"}},
			dietHits: []string{"Whey (vegan)"},
		},
		{
			name:     "paleo",
			text:     "oats, berries",
			prefs:    prefs.Preferences{Diets: []string{"paleo"}},
			dietHits: []string{"Oats (paleo)"},
		},
		{
			name:     "low fodmap from health restrictions",
			text:     "chicken, garlic",
			prefs:    prefs.Preferences{HealthRestrictions: []string{"Low FODMAP"}},
			dietHits: []string{"Garlic (low-fodmap)"},
		},
		{
			name:     "jain root vegetable",
			text:     "potato, tomato",
			prefs:    prefs.Preferences{Diets: []string{"Jain"}},
			dietHits: []string{"Potato (jain)"},
		},
		{
			name:     "fallback term without a taxonomy entry",
			text:     "gelatin, sugar",
			prefs:    prefs.Preferences{Diets: []string{"vegetarian"}},
			dietHits: []string{"Gelatin (vegetarian)"},
		},
		{
			name:     "one ingredient, two diets",
			text:     "butter",
			prefs:    prefs.Preferences{Diets: []string{"vegan", "dairy-free"}},
			dietHits: []string{"Butter (vegan)", "Butter (dairy-free)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.run(tt.text, tt.prefs, nil)
			assert.Equal(t, tt.safe, out.Safe())
			assert.Equal(t, tt.dietHits, out.DietHits)
		})
	}
}

func TestEvaluateLegacyPreference(t *testing.T) {
	e := newEvaluator(t, Options{})

	legacy := e.run("milk", prefs.FromMap(map[string]any{"diet": "Vegan"}), nil)
	list := e.run("milk", prefs.FromMap(map[string]any{"dietary_preferences": []any{"Vegan"}}), nil)

	assert.False(t, legacy.Safe())
	assert.Equal(t, list, legacy)
	assert.Equal(t, []string{"vegan"}, legacy.ActiveDiets)
}

func TestEvaluateWatchlist(t *testing.T) {
	e := newEvaluator(t, Options{})

	clean := e.run("sugar, oats", prefs.Preferences{Diets: []string{"Clean Eating"}}, nil)
	assert.False(t, clean.Safe())
	assert.Equal(t, []string{"Sugar"}, clean.Hits)
	assert.Empty(t, clean.DietHits)

	relaxed := e.run("sugar, oats", prefs.Preferences{}, nil)
	assert.True(t, relaxed.Safe())
	assert.Empty(t, relaxed.Hits)
	assert.Equal(t, []string{"Contains Sugar, which is on the clean-eating watchlist"}, relaxed.HealthInsights)

	// matched through a synonym and a flagged identifier
	additive := e.run("lecithin, palm oil", prefs.Preferences{Diets: []string{"clean-eating"}}, nil)
	assert.ElementsMatch(t, []string{"E322", "Palm oil"}, additive.Hits)
}

func TestEvaluateWatchlistContainment(t *testing.T) {
	e := newEvaluator(t, Options{})
	clean := prefs.Preferences{Diets: []string{"clean eating"}}

	tests := []struct {
		text string
		hits []string
	}{
		{"maltodextrins, water", []string{"Maltodextrins"}},
		{"hydrogenatedoil, water", []string{"Hydrogenatedoil"}},
		{"water, rice", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := e.run(tt.text, clean, nil)
			assert.Equal(t, len(tt.hits) == 0, out.Safe())
			if len(tt.hits) == 0 {
				assert.Empty(t, out.Hits)
				return
			}
			assert.Equal(t, tt.hits, out.Hits)
		})
	}
}

func TestEvaluateCustomAvoidance(t *testing.T) {
	e := newEvaluator(t, Options{})

	out := e.run("Wheat flour, Palm oil, Salt", prefs.Preferences{
		CustomAvoidance: []string{"Palm oil, palmolein", "carrageenan"},
	}, nil)
	assert.False(t, out.Safe())
	assert.Equal(t, []string{"Palm oil (Custom Selection)"}, out.Hits)

	alt := e.run("palmolein", prefs.Preferences{CustomAvoidance: []string{"Palm oil, palmolein"}}, nil)
	assert.Equal(t, []string{"Palm oil (Custom Selection)"}, alt.Hits)
}

func TestEvaluateAllergies(t *testing.T) {
	e := newEvaluator(t, Options{})

	out := e.run("Wheat flour, milk, peanuts", prefs.Preferences{Allergies: []string{"Milk", "nuts", "milk"}}, nil)
	assert.False(t, out.Safe())
	assert.Equal(t, []string{"Milk (Allergen)", "Peanut (Allergen)"}, out.AllergyHits)
	assert.Equal(t, []string{"Milk", "nuts"}, out.AllergyPreferences)
	assert.Empty(t, out.DietHits)

	// a child node is caught through its parent identifier
	whey := e.run("whey", prefs.Preferences{Allergies: []string{"milk"}}, nil)
	assert.Equal(t, []string{"Whey (Allergen)"}, whey.AllergyHits)

	gluten := e.run("wheat flour", prefs.Preferences{Allergies: []string{"gluten"}}, nil)
	assert.Equal(t, []string{"Wheat flour (Allergen)"}, gluten.AllergyHits)
}

func TestEvaluateNutrientLimits(t *testing.T) {
	e := newEvaluator(t, Options{})

	out := e.run("water", prefs.Preferences{Diets: []string{"diabetic-friendly"}}, map[string]any{"sugars_100g": 8.0})
	assert.False(t, out.Safe())
	assert.Equal(t, []string{"High sugar (8.0 g/100g) (diabetic-friendly)"}, out.DietHits)

	below := e.run("water", prefs.Preferences{Diets: []string{"diabetic-friendly"}}, map[string]any{"sugars_100g": 4.9})
	assert.True(t, below.Safe())

	keto := e.run("water", prefs.Preferences{Diets: []string{"keto"}}, map[string]any{"carbohydrates_100g": "12g", "fiber_100g": 4})
	assert.Equal(t, []string{"High net carbs (8.0 g/100g) (keto)"}, keto.DietHits)

	heart := e.run("water", prefs.Preferences{Diets: []string{"heart-healthy"}}, map[string]any{"salt_100g": 1.5, "saturated-fat_100g": "2 g"})
	assert.Equal(t, []string{
		"High sodium (600 mg/100g) (heart-healthy)",
		"High saturated fat (2.0 g/100g) (heart-healthy)",
	}, heart.DietHits)

	ungated := e.run("water", prefs.Preferences{}, map[string]any{"sugars_100g": 8.0})
	assert.True(t, ungated.Safe())
}

func TestEvaluateCustomThresholds(t *testing.T) {
	e := newEvaluator(t, Options{Thresholds: Thresholds{DiabeticSugars: 10, KetoNetCarbs: 5, Sodium: 400, SaturatedFat: 1.5}})

	out := e.run("water", prefs.Preferences{Diets: []string{"diabetic"}}, map[string]any{"sugars_100g": 8.0})
	assert.True(t, out.Safe())
}

func TestEvaluatePartialThresholds(t *testing.T) {
	e := newEvaluator(t, Options{Thresholds: Thresholds{DiabeticSugars: 7}})

	assert.Equal(t, Thresholds{DiabeticSugars: 7, KetoNetCarbs: 5, Sodium: 400, SaturatedFat: 1.5}, e.book.Thresholds())

	out := e.run("water", prefs.Preferences{Diets: []string{"low-sodium"}}, map[string]any{"sodium": 5})
	assert.True(t, out.Safe())
	assert.Empty(t, out.DietHits)

	sugar := e.run("water", prefs.Preferences{Diets: []string{"diabetic-friendly"}}, map[string]any{"sugars_100g": 6.0})
	assert.True(t, sugar.Safe())
}

func TestEvaluateInsights(t *testing.T) {
	e := newEvaluator(t, Options{})

	out := e.run("water", prefs.Preferences{Conditions: []string{"Diabetes"}, HealthRestrictions: []string{"hypertension"}}, map[string]any{
		"sugars_100g":    "12.5 g",
		"sodium_100g":    0.5,
		"trans-fat_100g": 0.3,
		"fiber_100g":     7,
		"proteins_100g":  "not measured",
	})
	assert.Equal(t, []string{
		"High sugar content (12.5 g/100g)",
		"High sodium content (500 mg/100g)",
		"Contains trans fat (0.3 g/100g)",
		"Good source of fiber (7.0 g/100g)",
		"Sugar content (12.5 g/100g) may not suit diabetes",
		"Sodium content (500 mg/100g) may not suit high blood pressure",
	}, out.HealthInsights)
	// hypertension is also a nutrient-only diet
	assert.Equal(t, []string{"High sodium (500 mg/100g) (hypertension)"}, out.DietHits)
}

func TestParseNutrients(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		key  Nutrient
		want float64
		ok   bool
	}{
		{"float", map[string]any{"sugars_100g": 8.0}, Sugars, 8, true},
		{"string grams", map[string]any{"sugars": "5g"}, Sugars, 5, true},
		{"string milligrams", map[string]any{"sugars": "1200 mg"}, Sugars, 1.2, true},
		{"comma decimal", map[string]any{"fibre": "3,5"}, Fiber, 3.5, true},
		{"case-insensitive key", map[string]any{"Proteins_100g": 11}, Protein, 11, true},
		{"sodium grams to mg", map[string]any{"sodium_100g": "0.5 g"}, Sodium, 500, true},
		{"sodium mg", map[string]any{"sodium_mg": 230}, Sodium, 230, true},
		{"salt converted", map[string]any{"salt": 1.25}, Sodium, 500, true},
		{"sodium wins over salt", map[string]any{"salt": 1.25, "sodium": 100}, Sodium, 100, true},
		{"non numeric skipped", map[string]any{"sugars": "traces"}, Sugars, 0, false},
		{"negative skipped", map[string]any{"fiber": -1}, Fiber, 0, false},
		{"fallback spelling", map[string]any{"sugars": "n/a", "sugar": 3}, Sugars, 3, true},
		{"wrong type", map[string]any{"sugars": []any{1}}, Sugars, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNutrients(tt.raw).Get(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := ParseNutrients(map[string]any{"fiber": 3}).NetCarbs()
	assert.False(t, ok)
}
