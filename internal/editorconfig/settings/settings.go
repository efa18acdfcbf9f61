// Package settings turns a raw EditorConfig rule set into canonical,
// fully-populated settings.
//
// Every field of Settings is always present: it either carries a value drawn
// from its documented domain or is Unset. Unset means the host editor's own
// default for the editor's scope applies; it is distinct from false and 0.
//
// Normalize never fails. Malformed raw values are treated as Unset, and
// Diagnose reports them separately for status display.
package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Raw EditorConfig property names consulted by Normalize.
const (
	KeyTrimTrailingWhitespace = "trim_trailing_whitespace"
	KeyInsertFinalNewline     = "insert_final_newline"
	KeyIndentStyle            = "indent_style"
	KeyIndentSize             = "indent_size"
	KeyTabWidth               = "tab_width"
	KeyEndOfLine              = "end_of_line"
	KeyMaxLineLength          = "max_line_length"
	KeyCharset                = "charset"
)

// RawConfig is the flat key/value rule set the parser produced for one path.
// Values are string, bool or int.
type RawConfig map[string]any

// Empty reports whether no rule applies.
func (r RawConfig) Empty() bool { return len(r) == 0 }

// Keys returns the property names in sorted order.
func (r RawConfig) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy.
func (r RawConfig) Clone() RawConfig {
	if r == nil {
		return nil
	}
	out := make(RawConfig, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// EndOfLine is a line-ending style.
type EndOfLine uint8

const (
	EndOfLineLF EndOfLine = iota
	EndOfLineCRLF
	EndOfLineCR
)

var endOfLineByName = map[string]EndOfLine{
	"crlf": EndOfLineCRLF,
	"cr":   EndOfLineCR,
	"lf":   EndOfLineLF,
}

// String returns the EditorConfig name of the style.
func (e EndOfLine) String() string {
	switch e {
	case EndOfLineCRLF:
		return "crlf"
	case EndOfLineCR:
		return "cr"
	default:
		return "lf"
	}
}

// Sequence returns the line-ending characters.
func (e EndOfLine) Sequence() string {
	switch e {
	case EndOfLineCRLF:
		return "\r\n"
	case EndOfLineCR:
		return "\r"
	default:
		return "\n"
	}
}

// IndentStyle is the indentation character policy.
type IndentStyle uint8

const (
	IndentSpace IndentStyle = iota
	IndentTab
)

// String returns the EditorConfig name of the style.
func (s IndentStyle) String() string {
	if s == IndentTab {
		return "tab"
	}
	return "space"
}

// Settings is the canonical settings record for one buffer.
type Settings struct {
	TrimTrailingWhitespace Value[bool]        `yaml:"trim_trailing_whitespace"`
	InsertFinalNewline     Value[bool]        `yaml:"insert_final_newline"`
	MaxLineLength          Value[int]         `yaml:"max_line_length"`
	EndOfLine              Value[EndOfLine]   `yaml:"end_of_line"`
	IndentStyle            Value[IndentStyle] `yaml:"indent_style"`
	TabWidth               Value[int]         `yaml:"tab_width"`
	Charset                Value[string]      `yaml:"charset"`
}

// Default returns settings with every field Unset.
func Default() Settings { return Settings{} }

// AllUnset reports whether no field carries a value.
func (s Settings) AllUnset() bool { return s == Settings{} }

// Normalize converts raw into canonical settings. It is total and
// deterministic: the same input always yields the same output and malformed
// values become Unset.
func Normalize(raw RawConfig) Settings {
	var s Settings

	s.TrimTrailingWhitespace = strictBool(raw, KeyTrimTrailingWhitespace)
	s.InsertFinalNewline = strictBool(raw, KeyInsertFinalNewline)

	if v, ok := raw[KeyIndentStyle].(string); ok {
		switch v {
		case "space":
			s.IndentStyle = Of(IndentSpace)
		case "tab":
			s.IndentStyle = Of(IndentTab)
		}
	}

	if v, ok := raw[KeyEndOfLine].(string); ok {
		if eol, known := endOfLineByName[v]; known {
			s.EndOfLine = Of(eol)
		}
	}

	s.TabWidth = positiveInt(tabWidthSource(raw))
	s.MaxLineLength = positiveInt(raw[KeyMaxLineLength])

	if v, ok := raw[KeyCharset].(string); ok {
		if cs := NormalizeCharset(v); cs != "" {
			s.Charset = Of(cs)
		}
	}

	return s
}

// NormalizeCharset lowercases a charset name and strips all hyphens,
// so "UTF-8" becomes "utf8".
func NormalizeCharset(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
}

// tabWidthSource picks indent_size when it is a size, else tab_width.
func tabWidthSource(raw RawConfig) any {
	v, ok := raw[KeyIndentSize]
	if !ok || v == "tab" || v == "" {
		return raw[KeyTabWidth]
	}
	return v
}

func strictBool(raw RawConfig, key string) Value[bool] {
	if b, ok := raw[key].(bool); ok {
		return Of(b)
	}
	return Value[bool]{}
}

func positiveInt(v any) Value[int] {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return Value[int]{}
		}
		n = parsed
	default:
		return Value[int]{}
	}
	if n <= 0 {
		return Value[int]{}
	}
	return Of(n)
}

// Diagnose lists recognized properties present in raw whose value was
// rejected by Normalize. Messages are sorted by property name.
func Diagnose(raw RawConfig) []string {
	if raw.Empty() {
		return nil
	}
	s := Normalize(raw)

	var out []string
	reject := func(key string, set bool) {
		if v, present := raw[key]; present && !set {
			out = append(out, fmt.Sprintf("%s: unsupported value %q", key, fmt.Sprint(v)))
		}
	}

	reject(KeyCharset, s.Charset.IsSet())
	reject(KeyEndOfLine, s.EndOfLine.IsSet())
	reject(KeyIndentStyle, s.IndentStyle.IsSet())
	reject(KeyInsertFinalNewline, s.InsertFinalNewline.IsSet())
	if v, ok := raw[KeyMaxLineLength]; ok && v != "off" {
		reject(KeyMaxLineLength, s.MaxLineLength.IsSet())
	}
	if v, ok := raw[KeyIndentSize]; ok && v != "tab" {
		if !positiveInt(v).IsSet() {
			out = append(out, fmt.Sprintf("%s: unsupported value %q", KeyIndentSize, fmt.Sprint(v)))
		}
	} else {
		reject(KeyTabWidth, s.TabWidth.IsSet())
	}
	reject(KeyTrimTrailingWhitespace, s.TrimTrailingWhitespace.IsSet())

	sort.Strings(out)
	return out
}
