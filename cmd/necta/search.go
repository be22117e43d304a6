package main

import (
	"strings"

	"github.com/jonathan/necta-results/internal/observability"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:     "search <exam_type> <year> <query...>",
	Short:   "Find schools on a roster by approximate name or number",
	Example: "  necta search csee 2022 benjamin mkapa --limit 3",
	Args:    cobra.MinimumNArgs(3),
	RunE:    runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", results.DefaultSearchLimit, "Maximum number of matches")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	id, err := types.ParseExamIdentity(args[1], args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[2:], " ")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.service.SearchSchools(cmd.Context(), id, query, searchLimit)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), matches)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(query, matches)
	return nil
}
