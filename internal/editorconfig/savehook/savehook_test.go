package savehook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/host/hosttest"
)

func run(text string, s settings.Settings) (*hosttest.Buffer, string) {
	buf := hosttest.NewBuffer("b", "/p/a.txt", text)
	Run(buf, s)
	return buf, buf.Text()
}

func TestRun_TrimTrailingWhitespace(t *testing.T) {
	s := settings.Settings{TrimTrailingWhitespace: settings.Of(true)}

	_, got := run("a \nb\t\n", s)
	assert.Equal(t, "a\nb\n", got)

	_, got = run("  x  \t \n\t\n  ", s)
	assert.Equal(t, "  x\n\n", got)
}

func TestRun_TrimDisabled(t *testing.T) {
	for _, s := range []settings.Settings{
		{TrimTrailingWhitespace: settings.Of(false)},
		{},
	} {
		buf, got := run("a \nb\t\n", s)
		assert.Equal(t, "a \nb\t\n", got)
		assert.Empty(t, buf.Calls())
	}
}

func TestRun_InsertFinalNewline(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		insert bool
		want   string
	}{
		{"true collapses three blank lines", "a\nb\n\n\n\n", true, "a\nb\n"},
		{"false collapses three blank lines", "a\nb\n\n\n\n", false, "a\nb\n"},
		{"true appends missing newline", "a\nb", true, "a\nb\n"},
		{"false keeps missing newline", "a\nb", false, "a\nb"},
		{"true keeps single newline", "a\n", true, "a\n"},
		{"false keeps single newline", "a\n", false, "a\n"},
		{"whitespace-only tail", "a\n  \n\t", true, "a\n"},
		{"whitespace-only last row", "a\n   ", false, "a\n"},
		{"blank rows only", "\n\n  \n", true, ""},
		{"blank rows only false", "\n\n", false, ""},
		{"empty buffer true", "", true, ""},
		{"empty buffer false", "", false, ""},
		{"inner blank lines kept", "a\n\n\nb\n\n", true, "a\n\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := run(tt.text, settings.Settings{InsertFinalNewline: settings.Of(tt.insert)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_InsertFinalNewlineUnset(t *testing.T) {
	buf, got := run("a\n\n\n\n", settings.Settings{})
	assert.Equal(t, "a\n\n\n\n", got)
	assert.Empty(t, buf.Calls())
}

func TestRun_Idempotent(t *testing.T) {
	s := settings.Settings{
		TrimTrailingWhitespace: settings.Of(true),
		InsertFinalNewline:     settings.Of(true),
	}
	buf := hosttest.NewBuffer("b", "", "x  \ny\t\n\n\n")
	Run(buf, s)
	assert.Equal(t, "x\ny\n", buf.Text())

	buf.Reset()
	Run(buf, s)
	assert.Equal(t, "x\ny\n", buf.Text())
	assert.Empty(t, buf.Calls(), "second run must not mutate")
}

func TestRun_TrimThenFinalNewline(t *testing.T) {
	s := settings.Settings{
		TrimTrailingWhitespace: settings.Of(true),
		InsertFinalNewline:     settings.Of(false),
	}
	_, got := run("a \n \n\t\n", s)
	assert.Equal(t, "a\n", got)
}

func TestTrimTrailingWhitespace_Count(t *testing.T) {
	buf := hosttest.NewBuffer("b", "", "a \nb\nc\t\t\n")
	assert.Equal(t, 2, TrimTrailingWhitespace(buf))
}
