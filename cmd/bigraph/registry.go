package main

import (
	"fmt"

	"github.com/aretw0/bigraph/internal/cli"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the registered types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBuilder(options(cmd, nil))
		if err != nil {
			return err
		}
		for _, name := range b.ListTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var processesCmd = &cobra.Command{
	Use:   "processes",
	Short: "List the registered processes, built-in and from the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if locators, _ := cmd.Flags().GetBool("locators"); locators {
			for _, address := range cli.BuiltinAddresses() {
				fmt.Fprintln(cmd.OutOrStdout(), address)
			}
			return nil
		}
		b, err := cli.NewBuilder(options(cmd, nil))
		if err != nil {
			return err
		}
		for _, name := range b.ListProcesses() {
			impl, _ := b.Processes().Access(name)
			if impl.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-8s %s\n", name, impl.Kind, impl.Description)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, impl.Kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	processesCmd.Flags().Bool("locators", false, "List the built-in addresses usable in a manifest instead")
	rootCmd.AddCommand(processesCmd)
}
