package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
)

type classifyOptions struct {
	diets        []string
	restrictions []string
	allergies    []string
	avoid        []string
	conditions   []string
	prefsJSON    string
	nutrients    string
	profile      string
	pretty       bool
}

func newClassifyCmd(a *app) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [ingredient text]",
		Short: "Classify an ingredient statement and print the analysis as JSON",
		Long: `Classify an ingredient statement against the given preferences.

The text is taken from the arguments, or from stdin when none are given.
Preferences come from a saved profile (--profile), a JSON object (--prefs)
and the individual flags, merged in that order.`,
		Example: `  untainted classify --diet vegan "apples, honey"
  echo "wheat flour, milk solids" | untainted classify --allergy gluten
  untainted classify --nutrients '{"sugars_100g": 8}' --diet diabetic water`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, a, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.diets, "diet", nil, "dietary preference (repeatable or comma separated)")
	f.StringSliceVar(&opts.restrictions, "restriction", nil, "health restriction such as \"Low FODMAP\"")
	f.StringSliceVar(&opts.allergies, "allergy", nil, "allergy label such as milk or peanuts")
	f.StringArrayVar(&opts.avoid, "avoid", nil, "custom avoidance entry; commas list alternatives of one entry")
	f.StringSliceVar(&opts.conditions, "condition", nil, "health condition such as diabetes")
	f.StringVar(&opts.prefsJSON, "prefs", "", "preferences as a JSON object")
	f.StringVar(&opts.nutrients, "nutrients", "", "nutrient values per 100g as a JSON object")
	f.StringVar(&opts.profile, "profile", "", "saved profile id")
	f.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func runClassify(cmd *cobra.Command, a *app, opts *classifyOptions, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	p := prefs.Preferences{}
	if opts.prefsJSON != "" {
		if p, err = prefs.FromJSON([]byte(opts.prefsJSON)); err != nil {
			return err
		}
	}
	p = p.Merge(prefs.Preferences{
		Diets:              opts.diets,
		HealthRestrictions: opts.restrictions,
		Allergies:          opts.allergies,
		CustomAvoidance:    opts.avoid,
		Conditions:         opts.conditions,
	})

	var nutrients map[string]any
	if opts.nutrients != "" {
		if err := json.Unmarshal([]byte(opts.nutrients), &nutrients); err != nil {
			return fmt.Errorf("%w: nutrients: %v", internalerr.ErrInvalidInput, err)
		}
	}

	ctx := cmd.Context()
	e, err := a.engine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if opts.profile != "" {
		if e.Profiles() == nil {
			return fmt.Errorf("%w: --profile needs profiles.db_path or PROFILE_DB_PATH", internalerr.ErrStoreUnavailable)
		}
		saved, err := e.Profiles().Get(ctx, opts.profile)
		if err != nil {
			return err
		}
		p = saved.Preferences.Merge(p)
	}

	return writeJSON(cmd.OutOrStdout(), e.Classify(text, p, nutrients), opts.pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
