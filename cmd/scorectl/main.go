package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scorectl",
	Short: "Operator tooling for the ethics scoring service",
	Long: `scorectl audits the principle labels of the question catalog,
recomputes stored Scores after catalog or alias changes, and seeds a
sample catalog for local development.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newAuditCmd(), newRecomputeCmd(), newSeedCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
