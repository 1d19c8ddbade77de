package main

import (
	"fmt"

	"github.com/aretw0/tinyfsm/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <blueprint.yaml>",
	Short: "Export the blueprint as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the states and their static transitions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if current, _ := cmd.Flags().GetString("highlight"); current != "" {
			overlay = &graph.Overlay{Current: current}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "State to highlight as current")
}
