package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bigraph/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bigraph",
	Short: "bigraph builds, checks and runs typed bigraph documents",
	Long: `bigraph loads a document (JSON or YAML with "schema" and "state"), reconciles it
against the registered types and processes, and can simulate, render or describe it.`,
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
	defaults := cli.DefaultOptions()
	rootCmd.PersistentFlags().String("out", defaults.OutDir, "Directory for written documents and diagrams")
	rootCmd.PersistentFlags().String("manifest", defaults.Manifest, "Process manifest to register before loading")
	rootCmd.PersistentFlags().Bool("debug", false, "Log completion and runtime events to stderr")
}

// options reads the persistent flags. The document is the first positional argument.
func options(cmd *cobra.Command, args []string) cli.Options {
	opts := cli.DefaultOptions()
	opts.OutDir, _ = cmd.Flags().GetString("out")
	opts.Manifest, _ = cmd.Flags().GetString("manifest")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	if len(args) > 0 {
		opts.Document = args[0]
	}
	return opts
}
