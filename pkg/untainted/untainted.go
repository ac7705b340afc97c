// Package untainted classifies food-label ingredient statements against a
// consumer's diets, allergies and avoidance lists.
package untainted

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amantheshaikh/untainted/pkg/untainted/config"
	"github.com/amantheshaikh/untainted/pkg/untainted/ingest"
	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/metrics"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/report"
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
	"github.com/amantheshaikh/untainted/pkg/untainted/rules"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
)

// Engine is the classification facade. It is safe for concurrent use once
// constructed.
type Engine struct {
	pipeline *ingest.Pipeline
	book     *rules.Book
	builder  *report.Builder
	profiles store.ProfileStore
	metrics  *metrics.Recorder
	logger   *slog.Logger
	source   string
	diag     report.Diagnostics
}

// Options configures an Engine. A nil Pipeline resolves heuristically and
// a nil Book uses the built-in catalog.
type Options struct {
	Pipeline    *ingest.Pipeline
	Book        *rules.Book
	Source      string
	Diagnostics report.Diagnostics
	Profiles    store.ProfileStore
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = ingest.NewPipeline(ingest.NewTokenizer(nil), resolve.New(nil, nil, resolve.Options{}))
	}
	if opts.Book == nil {
		cat, err := rules.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
		opts.Book = rules.NewBook(cat, opts.Pipeline.Resolver().Ingredients(), opts.Pipeline.Resolver().Additives(), rules.Options{Logger: opts.Logger})
	}
	if opts.Source == "" {
		r := opts.Pipeline.Resolver()
		opts.Source = report.SourceLabel(r.Ingredients() != nil, r.Additives() != nil)
	}

	return &Engine{
		pipeline: opts.Pipeline,
		book:     opts.Book,
		builder:  report.NewBuilder(),
		profiles: opts.Profiles,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		source:   opts.Source,
		diag:     opts.Diagnostics,
	}, nil
}

// FromComponents creates an Engine over loaded components. Pipeline, Book,
// Source and Diagnostics in opts are replaced by the components' own.
func FromComponents(c *config.Components, opts Options) (*Engine, error) {
	opts.Pipeline = c.Pipeline
	opts.Book = c.Book
	opts.Source = c.Source()
	opts.Diagnostics = c.Diagnostics
	return New(opts)
}

// Close releases the profile store, if any.
func (e *Engine) Close() error {
	if e.profiles == nil {
		return nil
	}
	return e.profiles.Close()
}

// Classify analyses one ingredient statement. It never fails: unknown
// ingredients resolve heuristically and malformed nutrient values are
// skipped.
func (e *Engine) Classify(text string, p prefs.Preferences, nutrients map[string]any) report.Analysis {
	processed := e.pipeline.Process(text)
	outcome := e.book.Evaluate(processed.Ingredients, p, nutrients)
	a := e.builder.Build(report.Input{
		Source:      e.source,
		Ingredients: processed.Ingredients,
		Outcome:     outcome,
		Diagnostics: e.diag,
	})
	e.metrics.ObserveAnalysis(a)
	e.logger.Debug("classified",
		"id", a.ID,
		"ingredients", len(a.Ingredients),
		"status", a.Status,
		"diets", a.ActiveDiets,
		"confidence", a.Confidence.Average,
	)
	return a
}

// ClassifyProfile classifies text against a saved profile's preferences.
func (e *Engine) ClassifyProfile(ctx context.Context, text, profileID string, nutrients map[string]any) (report.Analysis, error) {
	if e.profiles == nil {
		return report.Analysis{}, fmt.Errorf("%w: no profile store configured", internalerr.ErrStoreUnavailable)
	}
	p, err := e.profiles.Get(ctx, profileID)
	if err != nil {
		return report.Analysis{}, err
	}
	return e.Classify(text, p.Preferences, nutrients), nil
}

// Lookup tokenizes and resolves text without evaluating any rules.
func (e *Engine) Lookup(text string) []resolve.Ingredient {
	processed := e.pipeline.Process(text)
	for _, ing := range processed.Ingredients {
		e.metrics.ObserveMatch(ing.MatchType)
	}
	return processed.Ingredients
}

// Diagnostics returns the taxonomy load failures recorded at startup.
func (e *Engine) Diagnostics() report.Diagnostics {
	return e.diag
}

// Source returns the taxonomy coverage label.
func (e *Engine) Source() string {
	return e.source
}

// Book returns the rule book.
func (e *Engine) Book() *rules.Book {
	return e.book
}

// Profiles returns the profile store, which may be nil.
func (e *Engine) Profiles() store.ProfileStore {
	return e.profiles
}
