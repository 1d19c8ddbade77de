package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tinyfsm/pkg/registry"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <blueprint.yaml>",
	Short: "Check a blueprint for consistency",
	Long: `Checks that the initial state exists, that every aspect is known and that every
transition target is declared. States no static transition reaches are reported as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		if err := doc.Validate(registry.Builtin()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if unreachable := doc.Unreachable(); len(unreachable) > 0 {
			fmt.Fprintf(out, "warning: not reachable through static transitions: %s\n", strings.Join(unreachable, ", "))
		}
		fmt.Fprintln(out, "Blueprint is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
