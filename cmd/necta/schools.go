package main

import (
	"github.com/jonathan/necta-results/internal/observability"
	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/spf13/cobra"
)

var schoolsCmd = &cobra.Command{
	Use:     "schools <exam_type> <year>",
	Short:   "List every school and center that sat an exam",
	Example: "  necta schools csee 2022",
	Args:    cobra.ExactArgs(2),
	RunE:    runSchools,
}

func init() {
	rootCmd.AddCommand(schoolsCmd)
}

func runSchools(cmd *cobra.Command, args []string) error {
	id, err := types.ParseExamIdentity(args[1], args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	roster, err := a.service.Roster(cmd.Context(), id)
	if err != nil {
		return err
	}

	return emit(cmd.OutOrStdout(), schemas.KindRoster, roster, func() {
		observability.NewPrinter(cmd.OutOrStdout()).PrintRoster(roster)
	})
}
