package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/amantheshaikh/untainted/pkg/untainted/prefs"
	"github.com/amantheshaikh/untainted/pkg/untainted/store"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved preference profiles",
		Long:  "Manage saved preference profiles. Requires profiles.db_path or PROFILE_DB_PATH.",
	}
	cmd.AddCommand(
		newProfileSetCmd(a),
		newProfileShowCmd(a),
		newProfileDeleteCmd(a),
		newProfileListCmd(a),
	)
	return cmd
}

func newProfileSetCmd(a *app) *cobra.Command {
	var (
		name      string
		prefsJSON string
		merge     bool
		flagPrefs prefs.Preferences
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace a profile",
		Example: `  untainted profile set asha --diet jain --allergy peanuts
  untainted profile set family --prefs '{"dietary_preferences":["vegan"],"allergies":"milk, nuts"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.profiles(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			p := prefs.Preferences{}
			if prefsJSON != "" {
				if p, err = prefs.FromJSON([]byte(prefsJSON)); err != nil {
					return err
				}
			}
			p = p.Merge(flagPrefs)

			if merge {
				existing, err := st.Get(ctx, args[0])
				if err == nil {
					p = existing.Preferences.Merge(p)
					if name == "" {
						name = existing.Name
					}
				}
			}

			profile := store.Profile{ID: args[0], Name: name, Preferences: p, UpdatedAt: time.Now().UTC()}
			if err := st.Put(ctx, profile); err != nil {
				return err
			}
			a.logger.Info("profile saved", "id", args[0])
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "display name")
	f.StringVar(&prefsJSON, "prefs", "", "preferences as a JSON object")
	f.BoolVar(&merge, "merge", false, "add to the existing profile instead of replacing it")
	f.StringSliceVar(&flagPrefs.Diets, "diet", nil, "dietary preference")
	f.StringSliceVar(&flagPrefs.HealthRestrictions, "restriction", nil, "health restriction")
	f.StringSliceVar(&flagPrefs.Allergies, "allergy", nil, "allergy label")
	f.StringArrayVar(&flagPrefs.CustomAvoidance, "avoid", nil, "custom avoidance entry")
	f.StringSliceVar(&flagPrefs.Conditions, "condition", nil, "health condition")
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.profiles(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p, true)
		},
	}
}

func newProfileDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.profiles(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(ctx, args[0])
		},
	}
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.profiles(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			profiles, err := st.List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDIETS\tALLERGIES\tUPDATED")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s\n",
					p.ID, p.Name, p.Preferences.Diets, p.Preferences.Allergies, p.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
