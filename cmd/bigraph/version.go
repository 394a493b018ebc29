package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/bigraph"
	"github.com/aretw0/bigraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bigraph",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(bigraph.Version)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bigraph version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
