package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/edconf/internal/app"
)

// Exit codes.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed command or, for check, reported
	// findings.
	ExitCodeError = 1
)

// errFindings is returned by check when something was reported. The
// findings themselves are already printed.
var errFindings = errors.New("files do not conform")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	configName string
}

func (f *globalFlags) options(cmd *cobra.Command) app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		LogLevel:   f.logLevel,
		ConfigName: f.configName,
		LogOutput:  cmd.ErrOrStderr(),
	}
}

// newApp creates the application for one command run.
func (f *globalFlags) newApp(cmd *cobra.Command) (*app.Application, error) {
	a, err := app.New(f.options(cmd))
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "edconf",
		Short: "Apply EditorConfig rules to files",
		Long: `edconf resolves the EditorConfig rules of files the way an editor does:
it looks up every .editorconfig file from the file's directory to the
nearest root, normalizes the properties, applies them to an in-memory
editor, and runs the pre-save rules (trailing whitespace, final newline,
line endings, charset) when the file is written.`,
		Version:      version,
		SilenceUsage: true,
		// Errors are printed by run.
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("edconf %s (commit %s, built %s)\n", version, commit, date))

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.configName, "config-name", "", "EditorConfig file name (default .editorconfig)")

	root.AddCommand(
		newShowCmd(flags),
		newCheckCmd(flags),
		newFixCmd(flags),
		newWatchCmd(flags),
	)
	return root
}
