package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tinyfsm/internal/logging"
	"github.com/aretw0/tinyfsm/pkg/blueprint"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tinyfsm",
	Short: "tinyfsm runs declarative finite state machines",
	Long: `tinyfsm loads state machine blueprints from YAML files and runs them,
either once in the terminal or many at a time behind an HTTP API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}

// newLogger builds the logger configured by the persistent flags.
// Logs go to stderr so they never mix with machine output.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	formatFlag, _ := cmd.Flags().GetString("log-format")

	level, err := logging.ParseLevel(levelFlag)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level, format), nil
}

func loadDocument(path string) (*blueprint.Document, error) {
	doc, err := blueprint.Load(path)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = path
	}
	return doc, nil
}
