// Package metrics exposes classification telemetry as Prometheus
// collectors. A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amantheshaikh/untainted/pkg/untainted/report"
	"github.com/amantheshaikh/untainted/pkg/untainted/resolve"
)

const namespace = "untainted"

// Recorder holds the collectors.
type Recorder struct {
	analyses     *prometheus.CounterVec
	matches      *prometheus.CounterVec
	dietHits     *prometheus.CounterVec
	allergyHits  prometheus.Counter
	uncertain    prometheus.Counter
	confidence   prometheus.Histogram
	taxonomySize *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg. A nil
// registerer selects prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Ingredient statements classified, by verdict and coverage source.",
		}, []string{"status", "source"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingredient_matches_total",
			Help:      "Resolved ingredients by match type.",
		}, []string{"match_type"}),
		dietHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diet_conflicts_total",
			Help:      "Analyses with at least one conflict, by active diet.",
		}, []string{"diet"}),
		allergyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allergy_conflicts_total",
			Help:      "Allergen conflicts reported.",
		}),
		uncertain: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uncertain_analyses_total",
			Help:      "Analyses that need manual verification.",
		}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_confidence",
			Help:      "Average match confidence per analysis.",
			Buckets:   []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		}),
		taxonomySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "taxonomy_nodes",
			Help:      "Nodes loaded per taxonomy.",
		}, []string{"taxonomy"}),
	}

	for _, c := range []prometheus.Collector{
		r.analyses, r.matches, r.dietHits, r.allergyHits, r.uncertain, r.confidence, r.taxonomySize,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveAnalysis records one finished analysis.
func (r *Recorder) ObserveAnalysis(a report.Analysis) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(a.Status, a.Source).Inc()
	for _, m := range a.Confidence.Ingredients {
		r.matches.WithLabelValues(string(m.MatchType)).Inc()
	}
	if len(a.Confidence.Ingredients) > 0 {
		r.confidence.Observe(a.Confidence.Average)
	}
	if len(a.DietHits) > 0 {
		for _, diet := range a.ActiveDiets {
			r.dietHits.WithLabelValues(diet).Inc()
		}
	}
	r.allergyHits.Add(float64(len(a.AllergyHits)))
	if a.NeedsVerification {
		r.uncertain.Inc()
	}
}

// ObserveMatch records a single resolution outside a full analysis.
func (r *Recorder) ObserveMatch(kind resolve.MatchType) {
	if r == nil {
		return
	}
	r.matches.WithLabelValues(string(kind)).Inc()
}

// SetTaxonomySize publishes the node count of a loaded taxonomy.
func (r *Recorder) SetTaxonomySize(name string, nodes int) {
	if r == nil {
		return
	}
	r.taxonomySize.WithLabelValues(name).Set(float64(nodes))
}
