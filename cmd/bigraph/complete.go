package main

import (
	"fmt"

	"github.com/aretw0/bigraph/internal/cli"
	"github.com/aretw0/bigraph/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <document>",
	Short: "Reconcile a document and print the completed form",
	Long: `Loads the document, fills defaults, infers types, resolves processes and
materializes wired stores. The completed document is printed, or written to the out
directory with --write.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBuilder(options(cmd, args))
		if err != nil {
			return err
		}

		if name, _ := cmd.Flags().GetString("write"); name != "" {
			path, err := b.Write(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "written to %s\n", path)
			return nil
		}

		doc, err := b.Document()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		data, err := file.Encode("document."+format, doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().String("write", "", "Write the completed document under this name instead of printing it")
	completeCmd.Flags().String("format", "yaml", "Output format when printing (json or yaml)")
}
