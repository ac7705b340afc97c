// Package config loads settings from YAML and the environment and builds
// the classification components from them.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/rules"
)

// Config is the root configuration.
type Config struct {
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Rules    RulesConfig    `yaml:"rules"`
	Resolve  ResolveConfig  `yaml:"resolve"`
	Log      LogConfig      `yaml:"log"`
	Profiles ProfilesConfig `yaml:"profiles"`
}

// TaxonomyConfig locates the taxonomy files and picks languages.
type TaxonomyConfig struct {
	IngredientsPath string   `yaml:"ingredients_path" env:"OFF_TAXONOMY_PATH"`
	AdditivesPath   string   `yaml:"additives_path"   env:"OFF_ADDITIVES_PATH"`
	Language        string   `yaml:"language"         env:"OFF_LANGUAGE"       env-default:"en"`
	Languages       []string `yaml:"languages"        env:"OFF_TAXONOMY_LANGS" env-separator:","`
}

// RulesConfig holds the rule catalog location and nutrient limits.
type RulesConfig struct {
	CatalogPath    string  `yaml:"catalog_path"              env:"RULES_CATALOG_PATH"`
	AllergensPath  string  `yaml:"allergens_path"            env:"ALLERGENS_PATH"`
	DiabeticSugars float64 `yaml:"diabetic_sugars_per_100g"  env:"DIABETIC_SUGARS_PER_100G_THRESHOLD" env-default:"5.0"`
	KetoNetCarbs   float64 `yaml:"keto_net_carbs_per_100g"   env:"KETO_NET_CARBS_PER_100G_THRESHOLD"  env-default:"5.0"`
	SodiumMg       float64 `yaml:"sodium_mg_per_100g"        env:"SODIUM_MG_PER_100G_THRESHOLD"       env-default:"400"`
	SaturatedFat   float64 `yaml:"saturated_fat_per_100g"    env:"SATURATED_FAT_PER_100G_THRESHOLD"   env-default:"1.5"`
}

// ResolveConfig tunes the resolver.
type ResolveConfig struct {
	CacheSize int `yaml:"cache_size" env:"RESOLVE_CACHE_SIZE" env-default:"4096"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ProfilesConfig locates the profile database. Empty keeps profiles in
// memory.
type ProfilesConfig struct {
	DBPath string `yaml:"db_path" env:"PROFILE_DB_PATH"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags). An empty path
// loads from ENV + defaults only; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate performs range checks on the loaded configuration.
func (c *Config) Validate() error {
	limits := []struct {
		name  string
		value float64
	}{
		{"rules.diabetic_sugars_per_100g", c.Rules.DiabeticSugars},
		{"rules.keto_net_carbs_per_100g", c.Rules.KetoNetCarbs},
		{"rules.sodium_mg_per_100g", c.Rules.SodiumMg},
		{"rules.saturated_fat_per_100g", c.Rules.SaturatedFat},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0 (got %v)", internalerr.ErrInvalidConfig, l.name, l.value)
		}
	}
	if c.Resolve.CacheSize <= 0 {
		return fmt.Errorf("%w: resolve.cache_size must be > 0 (got %d)", internalerr.ErrInvalidConfig, c.Resolve.CacheSize)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json (got %q)", internalerr.ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// Thresholds converts the nutrient limits for the rule engine.
func (c *Config) Thresholds() rules.Thresholds {
	return rules.Thresholds{
		DiabeticSugars: c.Rules.DiabeticSugars,
		KetoNetCarbs:   c.Rules.KetoNetCarbs,
		Sodium:         c.Rules.SodiumMg,
		SaturatedFat:   c.Rules.SaturatedFat,
	}
}

// JSONLogs reports whether logs should be written as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.Log.Format, "json")
}
