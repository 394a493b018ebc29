package main

import (
	"github.com/aretw0/bigraph/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <document>",
	Short: "Simulate a document",
	Long: `Compiles the document, advances the simulation clock by --interval and prints a
JSON report with the queried results (JSONPath, e.g. "$.cell.level").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBuilder(options(cmd, args))
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetFloat64("interval")
		queries, _ := cmd.Flags().GetStringArray("query")
		write, _ := cmd.Flags().GetString("write")
		emitted, _ := cmd.Flags().GetBool("emitted")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Run(ctx, b, cli.RunOptions{
			Interval: interval,
			Queries:  queries,
			Write:    write,
			Emitted:  emitted,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Float64P("interval", "i", 1, "Simulation time to advance")
	runCmd.Flags().StringArrayP("query", "q", nil, "JSONPath query to report (repeatable); the whole state by default")
	runCmd.Flags().String("write", "", "Write the final document under this name")
	runCmd.Flags().Bool("emitted", false, "Include emitter histories in the report")
}
