package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marlinplonk/plonk-go/pkg/plonk"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the library and collaborator versions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "plonk-go %s\n", plonk.WrapperVersion())
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", plonk.CollaboratorVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
