package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/necta-results/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:     "validate <roster|students|student> <file.json>",
	Short:   "Validate a JSON document against an embedded schema",
	Example: "  necta schools csee 2022 --json > roster.json\n  necta validate roster roster.json",
	Args:    cobra.ExactArgs(2),
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := schemas.ParseKind(args[0])
	if err != nil {
		return err
	}

	if err := schemas.ValidateFile(kind, args[1]); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprint(cmd.OutOrStdout(), validationErr.Error())
			return fmt.Errorf("%s does not match the %s schema", args[1], kind)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s document\n", args[1], kind)
	return nil
}
