package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dshills/edconf/internal/app"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Report files that do not conform to their rules",
		Long: `Report files that saving would rewrite and lines longer than
max_line_length. Nothing is written. The exit status is 1 when anything is
reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			findings, checkErr := a.Check(args...)
			if checkErr != nil {
				return checkErr
			}
			if len(findings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All files conform.")
				return nil
			}
			renderFindings(cmd, findings)
			return errFindings
		},
	}
}

func renderFindings(cmd *cobra.Command, findings []app.Finding) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Line", "Kind", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Line", Align: text.AlignRight},
	})
	for _, f := range findings {
		line := ""
		if f.Line > 0 {
			line = fmt.Sprint(f.Line)
		}
		t.AppendRow(table.Row{f.Path, line, string(f.Kind), f.Message})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(findings)})
	t.Render()
}
