// Command untainted classifies food-label ingredient statements against
// diets, allergies and avoidance lists.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/amantheshaikh/untainted/internal/logging"
	"github.com/amantheshaikh/untainted/pkg/untainted"
	"github.com/amantheshaikh/untainted/pkg/untainted/config"
	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/metrics"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
	"github.com/amantheshaikh/untainted/pkg/untainted/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
}

// app carries the state shared by every subcommand. It is filled in by
// the root PersistentPreRunE.
type app struct {
	opts     rootOptions
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "untainted",
		Short: "Check ingredient lists against diets, allergies and avoidance lists",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.flushMetrics()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "c", "", "YAML config file (env only when empty)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&a.opts.logFormat, "log-format", "", "log format: text or json (overrides config)")
	pf.StringVar(&a.opts.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file on exit")

	cmd.AddCommand(
		newClassifyCmd(a),
		newLookupCmd(a),
		newRulesCmd(a),
		newProfileCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		cfg.Log.Format = a.opts.logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = logging.Init(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), cfg.JSONLogs())
	a.registry = prometheus.NewRegistry()
	return nil
}

// engine loads the taxonomies and rule catalog. The profile store is
// attached only when a database path is configured.
func (a *app) engine(ctx context.Context) (*untainted.Engine, error) {
	rec, err := metrics.NewRecorder(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	loader := &config.Loader{Config: a.cfg, Logger: a.logger, Metrics: rec}
	comp, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	var profiles store.ProfileStore
	if a.cfg.Profiles.DBPath != "" {
		if profiles, err = a.profiles(ctx); err != nil {
			return nil, err
		}
	}

	e, err := untainted.FromComponents(comp, untainted.Options{
		Profiles: profiles,
		Metrics:  rec,
		Logger:   a.logger,
	})
	if err != nil {
		if profiles != nil {
			profiles.Close()
		}
		return nil, err
	}
	if d := e.Diagnostics(); d.TaxonomyError != "" || d.AdditivesError != "" {
		a.logger.Warn("running with reduced taxonomy coverage",
			"source", e.Source(),
			"taxonomy_error", d.TaxonomyError,
			"additives_error", d.AdditivesError,
		)
	}
	return e, nil
}

func (a *app) profiles(ctx context.Context) (store.ProfileStore, error) {
	if a.cfg.Profiles.DBPath == "" {
		return nil, fmt.Errorf("%w: set profiles.db_path or PROFILE_DB_PATH", internalerr.ErrStoreUnavailable)
	}
	return sqlite.OpenSQLite(ctx, a.cfg.Profiles.DBPath)
}

func (a *app) flushMetrics() error {
	if a.opts.metricsFile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.opts.metricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// readText joins the positional arguments, or reads stdin when there are
// none.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: no ingredient text given", internalerr.ErrInvalidInput)
	}
	return text, nil
}
