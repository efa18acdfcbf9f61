// Package savehook mutates a buffer right before it is saved: trailing
// whitespace trimming and final-newline normalization.
package savehook

import (
	"regexp"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/host"
)

var trailingWhitespace = regexp.MustCompile(`(?m)[ \t]+$`)

// Run applies the pre-save rules of s to buf. Each rule is gated by its own
// setting; Unset rules leave the buffer alone.
func Run(buf host.Buffer, s settings.Settings) {
	if s.TrimTrailingWhitespace.Is(true) {
		TrimTrailingWhitespace(buf)
	}
	if insert, ok := s.InsertFinalNewline.Get(); ok {
		NormalizeFinalNewline(buf, insert)
	}
}

// TrimTrailingWhitespace removes runs of spaces and tabs at the end of every
// row. It returns the number of rows changed.
func TrimTrailingWhitespace(buf host.Buffer) int {
	return buf.BackwardsScanAndReplace(trailingWhitespace, "")
}

// NormalizeFinalNewline removes trailing blank rows so that the content ends
// with exactly one line break, and appends one when insert is true and the
// last row holds text. A buffer made only of blank rows becomes empty.
func NormalizeFinalNewline(buf host.Buffer, insert bool) {
	lastRow := buf.LastRow()

	if !buf.IsRowBlank(lastRow) {
		if insert {
			buf.Append("\n")
		}
		return
	}

	prev, ok := buf.PreviousNonBlankRow(lastRow)
	if !ok {
		if lastRow > 0 || buf.LineForRow(0) != "" {
			buf.DeleteRows(0, lastRow)
		}
		return
	}

	stripStart := prev + 1
	if stripStart == lastRow && buf.LineForRow(lastRow) == "" {
		return
	}
	buf.DeleteRows(stripStart, lastRow)
	buf.Append("\n")
}
