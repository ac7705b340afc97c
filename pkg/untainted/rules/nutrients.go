package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Nutrient names a per-100g quantity. Sodium is kept in milligrams,
// everything else in grams.
type Nutrient string

const (
	Sugars        Nutrient = "sugars"
	Carbohydrates Nutrient = "carbohydrates"
	Fiber         Nutrient = "fiber"
	Protein       Nutrient = "protein"
	Sodium        Nutrient = "sodium"
	SaturatedFat  Nutrient = "saturated_fat"
	TransFat      Nutrient = "trans_fat"
)

// Thresholds are the per-100g limits applied to diets that opt into them.
type Thresholds struct {
	DiabeticSugars float64 `json:"diabetic_sugars_g"`
	KetoNetCarbs   float64 `json:"keto_net_carbs_g"`
	Sodium         float64 `json:"sodium_mg"`
	SaturatedFat   float64 `json:"saturated_fat_g"`
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DiabeticSugars: 5.0,
		KetoNetCarbs:   5.0,
		Sodium:         400,
		SaturatedFat:   1.5,
	}
}

// WithDefaults fills each zero limit from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.DiabeticSugars <= 0 {
		t.DiabeticSugars = d.DiabeticSugars
	}
	if t.KetoNetCarbs <= 0 {
		t.KetoNetCarbs = d.KetoNetCarbs
	}
	if t.Sodium <= 0 {
		t.Sodium = d.Sodium
	}
	if t.SaturatedFat <= 0 {
		t.SaturatedFat = d.SaturatedFat
	}
	return t
}

// Fixed levels for the informational insights.
const (
	insightSugar    = 10.0
	insightSodium   = 400.0
	insightTransFat = 0.2
	insightFiber    = 6.0
	insightProtein  = 10.0

	// mg of sodium per g of salt
	sodiumPerSalt = 400.0
)

type nutrientKey struct {
	key  string
	unit string // unit assumed when the value carries none
}

var nutrientKeys = map[Nutrient][]nutrientKey{
	Sugars:        {{"sugars_100g", "g"}, {"sugars", "g"}, {"sugar_100g", "g"}, {"sugars_value", "g"}, {"sugar", "g"}},
	Carbohydrates: {{"carbohydrates_100g", "g"}, {"carbohydrates", "g"}, {"carbohydrate_100g", "g"}, {"carbs_100g", "g"}, {"carbs", "g"}},
	Fiber:         {{"fiber_100g", "g"}, {"fiber", "g"}, {"fibre_100g", "g"}, {"fibre", "g"}},
	Protein:       {{"proteins_100g", "g"}, {"protein_100g", "g"}, {"proteins", "g"}, {"protein", "g"}},
	Sodium:        {{"sodium_mg", "mg"}, {"sodium_100g", "g"}, {"sodium", "mg"}},
	SaturatedFat:  {{"saturated-fat_100g", "g"}, {"saturated_fat_100g", "g"}, {"saturated-fat", "g"}, {"saturated_fat", "g"}, {"saturatedfat", "g"}},
	TransFat:      {{"trans-fat_100g", "g"}, {"trans_fat_100g", "g"}, {"trans-fat", "g"}, {"trans_fat", "g"}},
}

var saltKeys = []nutrientKey{{"salt_100g", "g"}, {"salt", "g"}}

// milligrams per unit
var unitScale = map[string]float64{
	"g":   1000,
	"mg":  1,
	"mcg": 0.001,
	"µg":  0.001,
	"ug":  0.001,
}

var amountPattern = regexp.MustCompile(`^\s*(-?\d+(?:[.,]\d+)?)\s*(mg|g|mcg|µg|ug)?`)

// Nutrients holds the values that could be read from a nutrient mapping.
type Nutrients map[Nutrient]float64

// ParseNutrients reads a loosely keyed nutrient mapping. Keys are matched
// case-insensitively in a fixed order of spellings; values may be numbers
// or strings such as "5g" or "120 mg". Values that are not numeric or are
// negative are skipped.
func ParseNutrients(raw map[string]any) Nutrients {
	out := make(Nutrients)
	if len(raw) == 0 {
		return out
	}
	lowered := make(map[string]any, len(raw))
	for k, v := range raw {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, exists := lowered[lk]; exists && k != lk {
			continue
		}
		lowered[lk] = v
	}

	for nutrient, keys := range nutrientKeys {
		target := "g"
		if nutrient == Sodium {
			target = "mg"
		}
		if v, ok := firstAmount(lowered, keys, target); ok {
			out[nutrient] = v
		}
	}
	if _, ok := out[Sodium]; !ok {
		if salt, ok := firstAmount(lowered, saltKeys, "g"); ok {
			out[Sodium] = salt * sodiumPerSalt
		}
	}
	return out
}

// Get returns a nutrient value.
func (n Nutrients) Get(k Nutrient) (float64, bool) {
	v, ok := n[k]
	return v, ok
}

// NetCarbs is carbohydrates minus fiber. Missing fiber counts as zero.
func (n Nutrients) NetCarbs() (float64, bool) {
	carbs, ok := n[Carbohydrates]
	if !ok {
		return 0, false
	}
	return carbs - n[Fiber], true
}

func firstAmount(raw map[string]any, keys []nutrientKey, target string) (float64, bool) {
	for _, k := range keys {
		v, ok := raw[k.key]
		if !ok {
			continue
		}
		amount, unit, ok := parseAmount(v)
		if !ok {
			continue
		}
		if unit == "" {
			unit = k.unit
		}
		return amount * unitScale[unit] / unitScale[target], true
	}
	return 0, false
}

func parseAmount(v any) (float64, string, bool) {
	var f float64
	unit := ""
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, "", false
		}
		f = parsed
	case string:
		m := amountPattern.FindStringSubmatch(strings.ToLower(val))
		if m == nil {
			return 0, "", false
		}
		parsed, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			return 0, "", false
		}
		f, unit = parsed, m[2]
	default:
		return 0, "", false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, "", false
	}
	return f, unit, true
}

// limitHits returns the diet-gated nutrient conflicts for the active diets.
func (b *Book) limitHits(active []string, n Nutrients) []string {
	var out []string
	for _, name := range active {
		rule, ok := b.rules[name]
		if !ok {
			continue
		}
		for _, limit := range rule.Limits {
			if hit, ok := b.limitHit(limit, name, n); ok {
				out = append(out, hit)
			}
		}
	}
	return out
}

func (b *Book) limitHit(limit, diet string, n Nutrients) (string, bool) {
	t := b.thresholds
	switch limit {
	case LimitSugars:
		if v, ok := n.Get(Sugars); ok && v >= t.DiabeticSugars {
			return fmt.Sprintf("High sugar (%.1f g/100g) (%s)", v, diet), true
		}
	case LimitNetCarbs:
		if v, ok := n.NetCarbs(); ok && v >= t.KetoNetCarbs {
			return fmt.Sprintf("High net carbs (%.1f g/100g) (%s)", v, diet), true
		}
	case LimitSodium:
		if v, ok := n.Get(Sodium); ok && v >= t.Sodium {
			return fmt.Sprintf("High sodium (%.0f mg/100g) (%s)", v, diet), true
		}
	case LimitSaturatedFat:
		if v, ok := n.Get(SaturatedFat); ok && v >= t.SaturatedFat {
			return fmt.Sprintf("High saturated fat (%.1f g/100g) (%s)", v, diet), true
		}
	}
	return "", false
}

// nutrientInsights are informational and never gated on diets.
func nutrientInsights(n Nutrients) []string {
	var out []string
	if v, ok := n.Get(Sugars); ok && v > insightSugar {
		out = append(out, fmt.Sprintf("High sugar content (%.1f g/100g)", v))
	}
	if v, ok := n.Get(Sodium); ok && v > insightSodium {
		out = append(out, fmt.Sprintf("High sodium content (%.0f mg/100g)", v))
	}
	if v, ok := n.Get(TransFat); ok && v > insightTransFat {
		out = append(out, fmt.Sprintf("Contains trans fat (%.1f g/100g)", v))
	}
	if v, ok := n.Get(Fiber); ok && v >= insightFiber {
		out = append(out, fmt.Sprintf("Good source of fiber (%.1f g/100g)", v))
	}
	if v, ok := n.Get(Protein); ok && v >= insightProtein {
		out = append(out, fmt.Sprintf("Good source of protein (%.1f g/100g)", v))
	}
	return out
}

// Health conditions recognised in preference tags.
const (
	ConditionDiabetes     = "diabetes"
	ConditionHypertension = "hypertension"
	ConditionHeart        = "heart"
)

// Conditions extracts the health conditions named by free-text tags.
func Conditions(tags ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	for _, list := range tags {
		for _, tag := range list {
			t := strings.ToLower(tag)
			if strings.Contains(t, "diabet") {
				add(ConditionDiabetes)
			}
			if strings.Contains(t, "hypertension") || strings.Contains(t, "blood pressure") {
				add(ConditionHypertension)
			}
			if strings.Contains(t, "heart") {
				add(ConditionHeart)
			}
		}
	}
	return out
}

func (b *Book) conditionInsights(conditions []string, n Nutrients) []string {
	t := b.thresholds
	var out []string
	for _, c := range conditions {
		switch c {
		case ConditionDiabetes:
			if v, ok := n.Get(Sugars); ok && v >= t.DiabeticSugars {
				out = append(out, fmt.Sprintf("Sugar content (%.1f g/100g) may not suit diabetes", v))
			}
		case ConditionHypertension:
			if v, ok := n.Get(Sodium); ok && v >= t.Sodium {
				out = append(out, fmt.Sprintf("Sodium content (%.0f mg/100g) may not suit high blood pressure", v))
			}
		case ConditionHeart:
			if v, ok := n.Get(SaturatedFat); ok && v >= t.SaturatedFat {
				out = append(out, fmt.Sprintf("Saturated fat (%.1f g/100g) may not suit heart health", v))
			}
		}
	}
	return out
}
