package main

import (
	"github.com/jonathan/necta-results/internal/observability"
	"github.com/jonathan/necta-results/internal/resolve"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <exam_type> <year> [school_number]",
	Short: "Print the pages an exam (and optionally a school) maps to",
	Long:  "Print the roster URL and skip count, and for a school the summary URL and results table index. Nothing is fetched.",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// resolveOutput is the JSON form of a resolution
type resolveOutput struct {
	Identity     string `json:"identity"`
	RosterURL    string `json:"roster_url,omitempty"`
	Skip         int    `json:"skip"`
	RosterError  string `json:"roster_error,omitempty"`
	SummaryURL   string `json:"summary_url,omitempty"`
	TableIndex   *int   `json:"table_index,omitempty"`
	SummaryError string `json:"summary_error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	exam, err := types.ParseExamIdentity(args[1], args[0])
	if err != nil {
		return err
	}

	res := observability.Resolution{Identity: exam.String()}
	if page, err := resolve.Roster(exam); err != nil {
		res.RosterErr = err
	} else {
		res.RosterURL = page.URL
		res.Skip = page.Skip
	}

	if len(args) == 3 {
		school, err := types.ParseSchoolIdentity(args[1], args[0], args[2])
		if err != nil {
			return err
		}
		res.Identity = school.String()
		if page, err := resolve.Summary(school); err != nil {
			res.SummaryErr = err
		} else {
			res.SummaryURL = page.URL
			res.TableIndex = page.TableIndex
		}
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), toResolveOutput(res, len(args) == 3))
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintResolution(res)
	return nil
}

func toResolveOutput(res observability.Resolution, withSchool bool) resolveOutput {
	out := resolveOutput{
		Identity:  res.Identity,
		RosterURL: res.RosterURL,
		Skip:      res.Skip,
	}
	if res.RosterErr != nil {
		out.RosterError = res.RosterErr.Error()
	}
	if withSchool {
		if res.SummaryErr != nil {
			out.SummaryError = res.SummaryErr.Error()
		} else {
			out.SummaryURL = res.SummaryURL
			index := res.TableIndex
			out.TableIndex = &index
		}
	}
	return out
}
