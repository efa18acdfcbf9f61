package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/notify"
)

type project struct {
	dir    string
	config string
}

func newProject(t *testing.T, rules string) project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".editorconfig"), []byte("root = true\n\n"+rules), 0o644))
	return project{dir: dir, config: filepath.Join(dir, "no-config.toml")}
}

func (p project) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(p.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the command line and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "edconf", root.Use)
	assert.True(t, root.SilenceUsage)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"show", "check", "fix", "watch"})

	for _, name := range []string{"config", "log-level", "config-name"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "edconf "+version))
}

func TestShow(t *testing.T) {
	p := newProject(t, "[*.py]\nindent_style = space\nindent_size = 4\n")
	file := p.file(t, "a.py", "x = 1\n")

	out, _, err := execute(t, "show", "--config", p.config, file)
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, file, docs[0]["path"])
	assert.Equal(t, "applied", docs[0]["phase"])

	st, ok := docs[0]["settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "space", st["indent_style"])
	assert.Equal(t, 4, st["tab_width"])
	assert.Equal(t, "unset", st["charset"])
}

func TestShow_RequiresFiles(t *testing.T) {
	_, _, err := execute(t, "show")
	assert.Error(t, err)
}

func TestCheck_ReportsFindings(t *testing.T) {
	p := newProject(t, "[*]\ntrim_trailing_whitespace = true\n")
	dirty := p.file(t, "dirty.txt", "x  \n")
	clean := p.file(t, "clean.txt", "y\n")

	out, _, err := execute(t, "check", "--config", p.config, dirty, clean)
	require.ErrorIs(t, err, errFindings)
	assert.Contains(t, out, dirty)
	assert.Contains(t, out, "format")
	assert.NotContains(t, out, clean)
	assert.Equal(t, "x  \n", readString(t, dirty))

	out, _, err = execute(t, "check", "--config", p.config, clean)
	require.NoError(t, err)
	assert.Contains(t, out, "All files conform.")
}

func TestFix_RewritesAndLists(t *testing.T) {
	p := newProject(t, "[*]\ninsert_final_newline = true\n")
	file := p.file(t, "a.txt", "no newline")

	out, _, err := execute(t, "fix", "--config", p.config, file)
	require.NoError(t, err)
	assert.Equal(t, "fixed "+file+"\n", out)
	assert.Equal(t, "no newline\n", readString(t, file))
}

func TestConfigNameFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ecrc"), []byte("root = true\n[*]\ntab_width = 7\n"), 0o644))
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0o644))

	out, _, err := execute(t, "show", "--config", filepath.Join(dir, "none.toml"), "--config-name", ".ecrc", file)
	require.NoError(t, err)
	assert.Contains(t, out, "tab_width: 7")
}

func TestInvalidLogLevel(t *testing.T) {
	p := newProject(t, "")
	file := p.file(t, "a.txt", "x\n")

	_, _, err := execute(t, "show", "--config", p.config, "--log-level", "chatty", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initializing")
}

func TestRun_ExitCodes(t *testing.T) {
	p := newProject(t, "[*]\ntrim_trailing_whitespace = true\n")
	dirty := p.file(t, "dirty.txt", "x \n")
	clean := p.file(t, "clean.txt", "y\n")

	assert.Equal(t, ExitCodeError, run([]string{"check", "--config", p.config, dirty}))
	assert.Equal(t, ExitCodeSuccess, run([]string{"check", "--config", p.config, clean}))
}

func TestDescribeChange(t *testing.T) {
	s := settings.Settings{
		IndentStyle: settings.Of(settings.IndentTab),
		TabWidth:    settings.Of(4),
	}
	assert.Equal(t, "/p/a.go: applied [indent_style=tab tab_width=4]",
		describeChange(notify.Change{Path: "/p/a.go", Type: notify.ChangeApplied, Settings: s}))
	assert.Equal(t, "/p/a.go: applied [no rules]",
		describeChange(notify.Change{Path: "/p/a.go", Type: notify.ChangeApplied}))
	assert.Equal(t, "/p/a.go: released",
		describeChange(notify.Change{Path: "/p/a.go", Type: notify.ChangeReleased}))
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
