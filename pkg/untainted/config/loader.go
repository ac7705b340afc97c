package config

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amantheshaikh/untainted/pkg/untainted/ingest"
	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/lexicon"
	"github.com/amantheshaikh/untainted/pkg/untainted/locale"
	"github.com/amantheshaikh/untainted/pkg/untainted/metrics"
	"github.com/amantheshaikh/untainted/pkg/untainted/report"
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
	"github.com/amantheshaikh/untainted/pkg/untainted/rules"
	"github.com/amantheshaikh/untainted/pkg/untainted/stoplist"
	"github.com/amantheshaikh/untainted/pkg/untainted/taxonomy"
)

// Loader loads the taxonomy files and rule catalog and constructs components
type Loader struct {
	Config  *Config
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Components holds everything a classification needs. Ingredients and
// Additives are nil when the corresponding file was not configured or
// failed to load; Diagnostics then says why.
type Components struct {
	Languages   locale.Languages
	Ingredients *taxonomy.Index
	Additives   *taxonomy.Index
	Stoplist    *stoplist.Manager
	Pipeline    *ingest.Pipeline
	Book        *rules.Book
	Diagnostics report.Diagnostics
}

// Source labels the taxonomy coverage of the loaded components.
func (c *Components) Source() string {
	return report.SourceLabel(c.Ingredients != nil, c.Additives != nil)
}

// Load parses both taxonomy files concurrently and builds the pipeline and
// rule book. A taxonomy that cannot be read is recorded in Diagnostics and
// classification continues without it. An unreadable rule catalog is fatal.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		return nil, fmt.Errorf("%w: loader has no config", internalerr.ErrInvalidConfig)
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := loadCatalog(cfg.Rules.CatalogPath)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Languages: locale.New(cfg.Taxonomy.Language, cfg.Taxonomy.Languages),
	}

	var ingTax, addTax *taxonomy.Taxonomy
	var ingErr, addErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ingTax, ingErr = parseTaxonomy(gctx, cfg.Taxonomy.IngredientsPath)
		return gctx.Err()
	})
	g.Go(func() error {
		addTax, addErr = parseTaxonomy(gctx, cfg.Taxonomy.AdditivesPath)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load taxonomies: %w", err)
	}

	if ingErr != nil {
		comp.Diagnostics.TaxonomyError = ingErr.Error()
		logger.Warn("ingredient taxonomy unavailable", "path", cfg.Taxonomy.IngredientsPath, "error", ingErr)
	}
	if addErr != nil {
		comp.Diagnostics.AdditivesError = addErr.Error()
		logger.Warn("additive taxonomy unavailable", "path", cfg.Taxonomy.AdditivesPath, "error", addErr)
	}

	comp.Stoplist = stoplist.NewManager(comp.Languages)
	if ingTax != nil {
		comp.Ingredients = taxonomy.NewIndex(ingTax, comp.Languages, taxonomy.SourceIngredients)
		comp.Stoplist.MergeAll(ingTax.Stopwords())
		l.Metrics.SetTaxonomySize(taxonomy.SourceIngredients, ingTax.Len())
		logger.Info("ingredient taxonomy loaded", "path", cfg.Taxonomy.IngredientsPath, "nodes", ingTax.Len())
	}
	if addTax != nil {
		comp.Additives = taxonomy.NewIndex(addTax, comp.Languages, taxonomy.SourceAdditives)
		comp.Stoplist.MergeAll(addTax.Stopwords())
		l.Metrics.SetTaxonomySize(taxonomy.SourceAdditives, addTax.Len())
		logger.Info("additive taxonomy loaded", "path", cfg.Taxonomy.AdditivesPath, "nodes", addTax.Len())
	}

	resolver := resolve.New(comp.Ingredients, comp.Additives, resolve.Options{CacheSize: cfg.Resolve.CacheSize})
	comp.Pipeline = ingest.NewPipeline(ingest.NewTokenizer(comp.Stoplist), resolver)
	allergens, err := loadAllergens(cfg.Rules.AllergensPath)
	if err != nil {
		return nil, err
	}
	if allergens != nil {
		stats := allergens.Stats()
		logger.Info("allergen lexicon loaded", "path", cfg.Rules.AllergensPath,
			"groups", stats.SynonymGroups, "variants", stats.TotalVariants)
	}
	comp.Book = rules.NewBook(cat, comp.Ingredients, comp.Additives, rules.Options{
		Thresholds: cfg.Thresholds(),
		Allergens:  allergens,
		Logger:     logger,
	})
	return comp, nil
}

// loadAllergens returns nil without error when no path is configured; the
// book then uses the catalog's groups.
func loadAllergens(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return nil, nil
	}
	lex, err := lexicon.LoadFromYAML(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return lex, nil
}

func loadCatalog(path string) (*rules.Catalog, error) {
	if path == "" {
		cat, err := rules.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := rules.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return cat, nil
}

// parseTaxonomy returns nil without error when no path is configured.
func parseTaxonomy(ctx context.Context, path string) (*taxonomy.Taxonomy, error) {
	if path == "" || ctx.Err() != nil {
		return nil, nil
	}
	tax, err := taxonomy.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrTaxonomyUnavailable, err)
	}
	return tax, nil
}
