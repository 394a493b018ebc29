package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/bigraph/internal/cli"
	"github.com/aretw0/bigraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <document>",
	Short: "Summarize the stores and edges of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBuilder(options(cmd, args))
		if err != nil {
			return err
		}
		doc, err := b.Document()
		if err != nil {
			return err
		}

		title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out, err := tui.RendererFor(os.Stdout)(tui.Describe(title, doc))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
