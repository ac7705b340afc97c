package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
)

func TestFromMapLegacyAndList(t *testing.T) {
	legacy := FromMap(map[string]any{"diet": "Vegan"})
	list := FromMap(map[string]any{"dietary_preferences": []any{"Vegan"}})
	assert.Equal(t, []string{"Vegan"}, legacy.Diets)
	assert.Equal(t, list.Diets, legacy.Diets)

	both := FromMap(map[string]any{
		"dietaryPreference":   "Jain",
		"dietary_preferences": []any{"vegan", "JAIN"},
	})
	assert.Equal(t, []string{"Jain", "vegan"}, both.Diets)
}

func TestFromMapShapes(t *testing.T) {
	p := FromMap(map[string]any{
		"health_restrictions": []any{"Low FODMAP", 42, nil},
		"allergies":           "Milk, Peanuts ,",
		"custom_avoidance": []any{
			"Palm oil, palmolein",
			map[string]any{"name": "Carrageenan"},
			map[string]any{"label": "ignored"},
		},
		"health_conditions": map[string]any{"name": "Diabetes"},
		"unknown":           "x",
	})
	assert.Equal(t, []string{"Low FODMAP"}, p.HealthRestrictions)
	assert.Equal(t, []string{"Milk", "Peanuts"}, p.Allergies)
	assert.Equal(t, []string{"Palm oil, palmolein", "Carrageenan"}, p.CustomAvoidance)
	assert.Equal(t, []string{"Diabetes"}, p.Conditions)
}

func TestFromMapMalformedIgnored(t *testing.T) {
	p := FromMap(map[string]any{
		"diet":      12,
		"allergies": map[string]any{"x": 1},
	})
	assert.True(t, p.IsZero())
	assert.True(t, FromMap(nil).IsZero())
}

func TestFromJSON(t *testing.T) {
	p, err := FromJSON([]byte(`{"dietary_preferences":["Vegan"],"health_restrictions":["Gluten-Free"],"allergies":["dairy","Dairy"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Vegan"}, p.Diets)
	assert.Equal(t, []string{"Gluten-Free"}, p.HealthRestrictions)
	assert.Equal(t, []string{"dairy"}, p.Allergies)

	_, err = FromJSON([]byte(`["not", "an", "object"]`))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestMerge(t *testing.T) {
	a := Preferences{Diets: []string{"vegan"}, Allergies: []string{"nuts"}}
	b := Preferences{Diets: []string{"Vegan", "keto"}, CustomAvoidance: []string{"msg"}}
	m := a.Merge(b)
	assert.Equal(t, []string{"vegan", "keto"}, m.Diets)
	assert.Equal(t, []string{"nuts"}, m.Allergies)
	assert.Equal(t, []string{"msg"}, m.CustomAvoidance)
	assert.Equal(t, []string{"vegan"}, a.Diets)
}
