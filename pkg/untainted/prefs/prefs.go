// Package prefs turns the loosely shaped preference records sent by
// clients into one typed structure. Unknown keys and values of the wrong
// shape are ignored.
package prefs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
)

// Preferences is the normalized preference record. Labels keep the user's
// spelling; the rule engine maps them onto diet and allergen names.
type Preferences struct {
	Diets              []string `json:"dietary_preferences,omitempty"`
	HealthRestrictions []string `json:"health_restrictions,omitempty"`
	Allergies          []string `json:"allergies,omitempty"`
	CustomAvoidance    []string `json:"custom_avoidance,omitempty"`
	Conditions         []string `json:"health_conditions,omitempty"`
}

var (
	legacyDietKeys  = []string{"diet", "dietary_preference", "dietaryPreference"}
	dietKeys        = []string{"dietary_preferences", "dietaryPreferences", "diets"}
	restrictionKeys = []string{"health_restrictions", "healthRestrictions"}
	allergyKeys     = []string{"allergies", "allergens"}
	avoidanceKeys   = []string{"custom_avoidance", "customAvoidance", "avoid"}
	conditionKeys   = []string{"health_conditions", "healthConditions", "conditions"}
)

// FromMap normalizes a decoded JSON object.
func FromMap(raw map[string]any) Preferences {
	var p Preferences
	if raw == nil {
		return p
	}
	p.Diets = dedupe(append(collect(raw, legacyDietKeys, false), collect(raw, dietKeys, false)...))
	p.HealthRestrictions = dedupe(collect(raw, restrictionKeys, false))
	p.Allergies = dedupe(collect(raw, allergyKeys, true))
	p.CustomAvoidance = dedupe(collect(raw, avoidanceKeys, false))
	p.Conditions = dedupe(collect(raw, conditionKeys, false))
	return p
}

// FromJSON decodes a JSON object and normalizes it.
func FromJSON(data []byte) (Preferences, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Preferences{}, fmt.Errorf("%w: preferences: %v", internalerr.ErrInvalidInput, err)
	}
	return FromMap(raw), nil
}

// Merge returns p with other's entries appended, duplicates removed.
func (p Preferences) Merge(other Preferences) Preferences {
	return Preferences{
		Diets:              dedupe(append(clone(p.Diets), other.Diets...)),
		HealthRestrictions: dedupe(append(clone(p.HealthRestrictions), other.HealthRestrictions...)),
		Allergies:          dedupe(append(clone(p.Allergies), other.Allergies...)),
		CustomAvoidance:    dedupe(append(clone(p.CustomAvoidance), other.CustomAvoidance...)),
		Conditions:         dedupe(append(clone(p.Conditions), other.Conditions...)),
	}
}

// IsZero reports whether no preference is set.
func (p Preferences) IsZero() bool {
	return len(p.Diets) == 0 && len(p.HealthRestrictions) == 0 && len(p.Allergies) == 0 &&
		len(p.CustomAvoidance) == 0 && len(p.Conditions) == 0
}

func collect(raw map[string]any, keys []string, splitCommas bool) []string {
	var out []string
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			out = append(out, labels(v, splitCommas)...)
		}
	}
	return out
}

// labels accepts a string, a list of strings, or a list of {"name": ...}
// records.
func labels(v any, splitCommas bool) []string {
	var out []string
	add := func(s string) {
		if splitCommas {
			for _, part := range strings.Split(s, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			return
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch val := v.(type) {
	case string:
		add(val)
	case []string:
		for _, s := range val {
			add(s)
		}
	case []any:
		for _, item := range val {
			switch it := item.(type) {
			case string:
				add(it)
			case map[string]any:
				if name, ok := it["name"].(string); ok {
					add(name)
				}
			}
		}
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			add(name)
		}
	}
	return out
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func clone(items []string) []string {
	return append([]string(nil), items...)
}
