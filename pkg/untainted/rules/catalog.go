package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/lexicon"
	"github.com/amantheshaikh/untainted/pkg/untainted/textnorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Nutrient limits a diet can opt into.
const (
	LimitSugars       = "sugars"
	LimitNetCarbs     = "net_carbs"
	LimitSodium       = "sodium"
	LimitSaturatedFat = "saturated_fat"
)

// Catalog is the curated rule data: diet seeds and fallback terms, allergen
// groups and the clean-eating watchlist.
type Catalog struct {
	Diets     []DietSpec      `yaml:"diets"`
	Allergens []lexicon.Group `yaml:"allergens"`
	Watchlist WatchlistSpec   `yaml:"watchlist"`
}

// DietSpec describes one diet category.
type DietSpec struct {
	Name              string   `yaml:"name"`
	Aliases           []string `yaml:"aliases"`
	Seeds             []string `yaml:"seeds"`
	Fallback          []string `yaml:"fallback"`
	Inherits          []string `yaml:"inherits"`           // diets whose fallback terms are added
	InheritsAllergens []string `yaml:"inherits_allergens"` // allergen groups whose variants are added
	Limits            []string `yaml:"limits"`
	Watchlist         bool     `yaml:"watchlist"`
}

// WatchlistSpec lists generally undesirable ingredients.
type WatchlistSpec struct {
	Terms      []string `yaml:"terms"`
	FlaggedIDs []string `yaml:"flagged_ids"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks names, references between diets and limit kinds.
func (c *Catalog) Validate() error {
	diets := make(map[string]struct{}, len(c.Diets))
	for _, d := range c.Diets {
		name := textnorm.Slug(d.Name)
		if name == "" {
			return fmt.Errorf("%w: diet without a name", internalerr.ErrInvalidConfig)
		}
		if _, dup := diets[name]; dup {
			return fmt.Errorf("%w: duplicate diet %q", internalerr.ErrInvalidConfig, d.Name)
		}
		diets[name] = struct{}{}
	}

	allergens := make(map[string]struct{}, len(c.Allergens))
	for _, g := range c.Allergens {
		allergens[textnorm.NormalizeToken(g.Canonical)] = struct{}{}
	}

	for _, d := range c.Diets {
		for _, parent := range d.Inherits {
			if _, ok := diets[textnorm.Slug(parent)]; !ok {
				return fmt.Errorf("%w: diet %q inherits unknown diet %q", internalerr.ErrInvalidConfig, d.Name, parent)
			}
		}
		for _, group := range d.InheritsAllergens {
			if _, ok := allergens[textnorm.NormalizeToken(group)]; !ok {
				return fmt.Errorf("%w: diet %q inherits unknown allergen %q", internalerr.ErrInvalidConfig, d.Name, group)
			}
		}
		for _, limit := range d.Limits {
			switch limit {
			case LimitSugars, LimitNetCarbs, LimitSodium, LimitSaturatedFat:
			default:
				return fmt.Errorf("%w: diet %q has unknown limit %q", internalerr.ErrInvalidConfig, d.Name, limit)
			}
		}
	}
	return nil
}
