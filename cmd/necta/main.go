// Package main provides the necta command line tool for Tanzanian national examination results.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "necta",
	Short: "NECTA examination results scraper",
	Long: `necta looks up CSEE and ACSEE results published by the National Examinations
Council of Tanzania: school rosters, per-school result sets and single candidates.
Results can be printed as tables or JSON, or served over a REST API.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
