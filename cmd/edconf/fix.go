package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFixCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fix FILE...",
		Short: "Rewrite files according to their rules",
		Long: `Save each file through its EditorConfig rules: trailing whitespace,
final newline, line endings and charset. Files that changed are listed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			changed, fixErr := a.Fix(args...)
			for _, p := range changed {
				fmt.Fprintf(cmd.OutOrStdout(), "fixed %s\n", p)
			}
			return fixErr
		},
	}
}
