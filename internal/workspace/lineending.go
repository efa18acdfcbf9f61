package workspace

import "strings"

// Line-ending sequences.
const (
	LF   = "\n"
	CRLF = "\r\n"
	CR   = "\r"
)

// DetectLineEnding returns the most common line ending in text, or LF if
// the text has none.
func DetectLineEnding(text string) string {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		switch {
		case i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n':
			crlfCount++
			i += 2
		case text[i] == '\r':
			crCount++
			i++
		case text[i] == '\n':
			lfCount++
			i++
		default:
			i++
		}
	}

	if crlfCount > 0 && crlfCount >= lfCount && crlfCount >= crCount {
		return CRLF
	}
	if crCount > 0 && crCount >= lfCount && crCount >= crlfCount {
		return CR
	}
	return LF
}

// splitLines splits text on any line ending. The result has at least one
// row; text ending with a break yields a trailing empty row.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, CRLF, LF)
	text = strings.ReplaceAll(text, CR, LF)
	return strings.Split(text, LF)
}
