package main

import (
	"github.com/jonathan/necta-results/internal/observability"
	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/spf13/cobra"
)

var candidateCmd = &cobra.Command{
	Use:     "candidate <exam_type> <year> <examination_number>",
	Short:   "Show the results of a single candidate",
	Long:    "Look up one candidate. The school is taken from the examination number prefix, so S0101/0001 is read from school s0101.",
	Example: "  necta candidate csee 2022 S0101/0001",
	Args:    cobra.ExactArgs(3),
	RunE:    runCandidate,
}

func init() {
	rootCmd.AddCommand(candidateCmd)
}

func runCandidate(cmd *cobra.Command, args []string) error {
	id, err := types.ParseExamIdentity(args[1], args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	student, err := a.service.Candidate(cmd.Context(), id, args[2])
	if err != nil {
		return err
	}

	return emit(cmd.OutOrStdout(), schemas.KindStudent, student, func() {
		observability.NewPrinter(cmd.OutOrStdout()).PrintStudent(student)
	})
}
