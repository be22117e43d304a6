package main

import (
	"github.com/jonathan/necta-results/internal/observability"
	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:     "students <exam_type> <year> <school_number>",
	Short:   "Show the results of every candidate at a school",
	Example: "  necta students csee 2022 s0101\n  necta students acsee 2019 P0103 --json",
	Args:    cobra.ExactArgs(3),
	RunE:    runStudents,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
}

func runStudents(cmd *cobra.Command, args []string) error {
	id, err := types.ParseSchoolIdentity(args[1], args[0], args[2])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	resultSet, err := a.service.Students(cmd.Context(), id)
	if err != nil {
		return err
	}

	return emit(cmd.OutOrStdout(), schemas.KindStudents, resultSet, func() {
		observability.NewPrinter(cmd.OutOrStdout()).PrintResultSet(resultSet)
	})
}
