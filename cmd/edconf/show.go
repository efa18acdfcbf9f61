package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE...",
		Short: "Print the resolved settings of files",
		Long: `Print, as YAML, the resolved settings, raw properties, severity and
diagnostics of each file. Properties without a rule print as "unset".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			snaps, showErr := a.Show(args...)
			if len(snaps) > 0 {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(snaps); err != nil {
					return err
				}
				if err := enc.Close(); err != nil {
					return err
				}
			}
			return showErr
		},
	}
}
