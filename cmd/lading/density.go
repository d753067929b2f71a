package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/lading/internal/freight"
)

func densityCmd() *cobra.Command {
	var (
		d     freight.Dimensions
		tiers bool
	)

	cmd := &cobra.Command{
		Use:   "density",
		Short: "Rate a shipment line by density",
		Long: `Compute cubic feet and pounds per cubic foot for a shipment line and map the
density onto the breakpoint table. Weight is pounds per unit; dimensions are
inches per unit.`,
		Example: "  lading density --weight 10 --length 12 --width 12 --height 12",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tiers {
				return printTiers(cmd)
			}

			res, err := freight.RateByDensity(d)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "cubic feet\t%.3f\n", res.CubicFeet)
			fmt.Fprintf(w, "density\t%.3f lb/ft³\n", res.Density)
			fmt.Fprintf(w, "freight class\t%s\n", res.Class)
			fmt.Fprintf(w, "nmfc\t%s-%s\n", res.NMFC, res.Sub)
			fmt.Fprintf(w, "label\t%s\n", res.Label)
			return w.Flush()
		},
	}

	cmd.Flags().Float64Var(&d.Weight, "weight", 0, "weight per unit in pounds")
	cmd.Flags().Float64Var(&d.Length, "length", 0, "length per unit in inches")
	cmd.Flags().Float64Var(&d.Width, "width", 0, "width per unit in inches")
	cmd.Flags().Float64Var(&d.Height, "height", 0, "height per unit in inches")
	cmd.Flags().IntVar(&d.Quantity, "quantity", 1, "number of units")
	cmd.Flags().BoolVar(&tiers, "tiers", false, "print the density breakpoint table")

	return cmd
}

type tierRow struct {
	MinDensity float64       `json:"minDensity"`
	Class      freight.Class `json:"freightClass"`
	Sub        string        `json:"nmfcSub"`
	Label      string        `json:"label"`
}

// The catch-all tier has no lower bound; it is reported as 0.
func printTiers(cmd *cobra.Command) error {
	var rows []tierRow
	for _, t := range freight.Tiers() {
		rows = append(rows, tierRow{
			MinDensity: max(t.MinDensity, 0),
			Class:      t.Class,
			Sub:        t.Sub,
			Label:      t.Label,
		})
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DENSITY >=\tCLASS\tSUB\tLABEL")
	for _, r := range rows {
		fmt.Fprintf(w, "%g\t%s\t%s\t%s\n", r.MinDensity, r.Class, r.Sub, r.Label)
	}
	return w.Flush()
}
