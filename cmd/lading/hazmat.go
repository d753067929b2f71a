package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/lading/internal/freight"
)

type hazmatResult struct {
	Input string             `json:"input"`
	Match freight.Match      `json:"match"`
	Rule  freight.HazmatRule `json:"rule"`
}

func hazmatCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "hazmat [hazard-class...]",
		Short: "Resolve hazard classes against the hazmat rule table",
		Long: `Resolve each DOT hazard class or division to its NMFC item and freight class.
An unknown division falls back to its main class; an unknown class falls back
to miscellaneous dangerous goods.`,
		Example: "  lading hazmat 3 8 2.1\n  lading hazmat --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				rules := freight.HazmatRules()
				args = slices.Sorted(maps.Keys(rules))
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one hazard class required")
			}

			results := make([]hazmatResult, 0, len(args))
			for _, a := range args {
				rule, match := freight.HazmatRuleFor(a)
				results = append(results, hazmatResult{Input: a, Match: match, Rule: rule})
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INPUT\tMATCH\tNMFC\tCLASS\tNAME")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Input, r.Match, r.Rule.NMFC, r.Rule.Class, r.Rule.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every rule in the table")

	return cmd
}
