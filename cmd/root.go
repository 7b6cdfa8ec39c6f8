// Package cmd implements the kestrelc CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root kestrelc command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kestrelc",
		Short:         "kestrelc - compiler front end for the kestrel UI language",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.AddCommand(NewCheckCmd(newDefaultProgramReader()))
	root.AddCommand(NewBuildCmd(newDefaultProgramReader(), newDefaultBuildWriter()))
	root.AddCommand(NewSchemaCmd())
	root.AddCommand(NewAcceptanceCmd())
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
