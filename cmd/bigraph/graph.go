package main

import (
	"fmt"

	"github.com/aretw0/bigraph/internal/cli"
	"github.com/aretw0/bigraph/internal/presentation/graph"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the bigraph as a Mermaid diagram",
	Long: `Renders containment (solid lines) and wiring (dotted arrows labelled with the
port) of the completed document. The diagram is written to the out directory, or
printed with --stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBuilder(options(cmd, args))
		if err != nil {
			return err
		}

		var opts ports.RenderOptions
		opts.Direction, _ = cmd.Flags().GetString("direction")
		opts.ShowValues, _ = cmd.Flags().GetBool("values")
		opts.ShowTypes, _ = cmd.Flags().GetBool("types")

		if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
			doc, err := b.Document()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc.State, doc.Schema, b.Processes(), opts))
			return nil
		}

		name, _ := cmd.Flags().GetString("name")
		path, err := b.Visualize(name, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "diagram written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("name", "bigraph", "Diagram file name")
	graphCmd.Flags().String("direction", "TD", "Flowchart direction (TD, LR, ...)")
	graphCmd.Flags().Bool("values", false, "Show store values")
	graphCmd.Flags().Bool("types", false, "Show store types")
	graphCmd.Flags().Bool("stdout", false, "Print the diagram instead of writing it")
}
