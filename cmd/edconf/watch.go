package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/notify"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR [FILE...]",
		Short: "Re-resolve open files when EditorConfig files change",
		Long: `Open FILEs and watch every EditorConfig file below DIR. When one changes,
the open files below it are resolved again and their new settings printed.
Stops on interrupt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			sub := a.Subscribe(func(c notify.Change) {
				fmt.Fprintln(out, describeChange(c))
			})
			defer sub.Unsubscribe()

			if len(args) > 1 {
				if _, err := a.Open(args[1:]...); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Watch(ctx, args[0])
		},
	}
}

func describeChange(c notify.Change) string {
	switch c.Type {
	case notify.ChangeApplied:
		return fmt.Sprintf("%s: %s [%s]", c.Path, c.Type, summarize(c.Settings))
	case notify.ChangeFailed:
		return fmt.Sprintf("%s: %s: %v", c.Path, c.Type, c.Err)
	default:
		return fmt.Sprintf("%s: %s", c.Path, c.Type)
	}
}

// summarize lists the set properties of s in a fixed order.
func summarize(s settings.Settings) string {
	var parts []string
	add := func(name string, v any, ok bool) {
		if ok {
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
	}
	v1, ok := s.IndentStyle.Get()
	add("indent_style", v1, ok)
	v2, ok := s.TabWidth.Get()
	add("tab_width", v2, ok)
	v3, ok := s.EndOfLine.Get()
	add("end_of_line", v3, ok)
	v4, ok := s.Charset.Get()
	add("charset", v4, ok)
	v5, ok := s.TrimTrailingWhitespace.Get()
	add("trim_trailing_whitespace", v5, ok)
	v6, ok := s.InsertFinalNewline.Get()
	add("insert_final_newline", v6, ok)
	v7, ok := s.MaxLineLength.Get()
	add("max_line_length", v7, ok)

	if len(parts) == 0 {
		return "no rules"
	}
	return strings.Join(parts, " ")
}
