// Command lading resolves freight classes from the density and hazmat rule
// tables without a database or network.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lading",
		Short: "Offline freight classification",
		Long: `lading rates shipment lines against the density breakpoint table and
resolves DOT hazard classes against the hazmat rule table.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("json", false, "write results as JSON")

	cmd.AddCommand(densityCmd())
	cmd.AddCommand(hazmatCmd())

	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}
