package main

import (
	"fmt"
	"runtime"

	"github.com/aretw0/tinyfsm"
	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tinyfsm version and build platform",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), tinyfsm.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tinyfsm version %s (%s %s/%s)\n",
			tinyfsm.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}
