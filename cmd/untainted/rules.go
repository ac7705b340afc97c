package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amantheshaikh/untainted/pkg/untainted/internalerr"
)

func newRulesCmd(a *app) *cobra.Command {
	var checks, allergens []string
	var showMembers bool

	cmd := &cobra.Command{
		Use:   "rules [diet]",
		Short: "Show diet closures, or test terms against one diet",
		Long: `Without arguments, list every diet with the size of its closure.

With a diet name or alias, print its seeds and limits. --check tests
whether an identifier (en:whey) or a term (honey) conflicts with it.

--allergen shows which allergen group a term belongs to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			book := e.Book()
			out := cmd.OutOrStdout()

			if len(allergens) > 0 {
				lex := book.Allergens()
				for _, term := range allergens {
					if lex.HasSynonyms(term) {
						fmt.Fprintf(out, "%s: %s\n", term, lex.Normalize(term))
					} else {
						fmt.Fprintf(out, "%s: no allergen group\n", term)
					}
				}
				return nil
			}

			if len(args) == 0 {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DIET\tSEEDS\tIDS\tTOKENS\tLIMITS\tWATCHLIST")
				for _, r := range book.Rules() {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%t\n",
						r.Name, len(r.Seeds), len(r.IDs), len(r.Tokens), strings.Join(r.Limits, ","), r.Watchlist)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				stats := book.Allergens().Stats()
				fmt.Fprintf(out, "\nallergen groups (%d, %d variants): %s\n",
					stats.SynonymGroups, stats.TotalVariants, strings.Join(book.Allergens().Canonicals(), ", "))
				return nil
			}

			r, ok := book.Rule(args[0])
			if !ok {
				return fmt.Errorf("%w: unknown diet %q", internalerr.ErrNotFound, args[0])
			}
			fmt.Fprintf(out, "diet:      %s\n", r.Name)
			fmt.Fprintf(out, "seeds:     %s\n", strings.Join(r.Seeds, ", "))
			fmt.Fprintf(out, "closure:   %d ids, %d tokens\n", len(r.IDs), len(r.Tokens))
			if len(r.Limits) > 0 {
				fmt.Fprintf(out, "limits:    %s\n", strings.Join(r.Limits, ", "))
			}
			if r.Watchlist {
				fmt.Fprintln(out, "watchlist: yes")
			}
			if showMembers {
				ids := make([]string, 0, len(r.IDs))
				for id := range r.IDs {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					fmt.Fprintf(out, "  %s\n", id)
				}
			}

			for _, term := range checks {
				conflict := r.HasToken(term)
				if strings.Contains(term, ":") {
					conflict = r.HasID(term)
				}
				verdict := "allowed"
				if conflict {
					verdict = "conflicts"
				}
				fmt.Fprintf(out, "%s: %s\n", term, verdict)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&checks, "check", nil, "identifier or term to test against the diet (repeatable)")
	cmd.Flags().StringArrayVar(&allergens, "allergen", nil, "term to look up in the allergen groups (repeatable)")
	cmd.Flags().BoolVar(&showMembers, "members", false, "list every identifier in the closure")
	return cmd
}
