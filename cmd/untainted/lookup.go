package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLookupCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup [ingredient text]",
		Short: "Show how each token of an ingredient statement resolves",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			items := e.Lookup(text)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items, false)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tORIGINAL\tCANONICAL\tDISPLAY\tMATCH\tCONFIDENCE")
			for _, ing := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\n",
					ing.Position, ing.Original, ing.Canonical, ing.Display, ing.MatchType, ing.Confidence)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print resolved ingredients as JSON")
	return cmd
}
