package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/edconf/internal/host"
)

// ErrBufferDestroyed is returned when saving a destroyed buffer.
var ErrBufferDestroyed = errors.New("buffer destroyed")

// ErrNoPath is returned when saving a buffer that has no path.
var ErrNoPath = errors.New("buffer has no path")

// Buffer is a line-based text model backed by an optional file.
type Buffer struct {
	mu sync.RWMutex

	id         host.BufferID
	path       string
	lines      []string
	encoding   string
	lineEnding string // preferred, "" when unset
	detected   string // line ending found when loading
	modified   bool
	destroyed  bool

	willSave listeners[func()]
	didSave  listeners[func(string)]
	destroy  listeners[func()]
}

// NewBuffer creates a buffer holding text. path may be empty.
func NewBuffer(path, text string) *Buffer {
	return &Buffer{
		id:       host.BufferID(uuid.NewString()),
		path:     path,
		lines:    splitLines(text),
		encoding: "utf8",
		detected: DetectLineEnding(text),
	}
}

// LoadBuffer reads the file at path, detecting its charset and line
// endings.
func LoadBuffer(path string) (*Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	cs := DetectCharset(data)
	text, err := Decode(cs, data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	b := NewBuffer(abs, text)
	b.encoding = cs
	return b, nil
}

// ID returns the identity assigned when the buffer was created.
func (b *Buffer) ID() host.BufferID { return b.id }

// Path returns the absolute file path, or "" for scratch buffers.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Text returns the content with "\n" line breaks.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, LF)
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = splitLines(text)
	b.modified = true
}

// IsModified reports whether the content changed since the last save.
func (b *Buffer) IsModified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// Encoding returns the charset used when saving.
func (b *Buffer) Encoding() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.encoding
}

// SetEncoding sets the charset used when saving.
func (b *Buffer) SetEncoding(charset string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoding = charset
}

// PreferredLineEnding returns the line ending forced on save, or "".
func (b *Buffer) PreferredLineEnding() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetPreferredLineEnding forces the line ending used on save.
func (b *Buffer) SetPreferredLineEnding(seq string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = seq
}

// LineEnding returns the sequence used when writing: the preferred one if
// set, else the one detected when loading.
func (b *Buffer) LineEnding() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lineEnding != "" {
		return b.lineEnding
	}
	return b.detected
}

// LineCount returns the number of rows.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LastRow returns the index of the final row.
func (b *Buffer) LastRow() int { return b.LineCount() - 1 }

// LineForRow returns the text of row without its line break.
func (b *Buffer) LineForRow(row int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// IsRowBlank reports whether row holds only whitespace.
func (b *Buffer) IsRowBlank(row int) bool {
	return strings.TrimSpace(b.LineForRow(row)) == ""
}

// PreviousNonBlankRow returns the nearest non-blank row above row.
func (b *Buffer) PreviousNonBlankRow(row int) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row > len(b.lines) {
		row = len(b.lines)
	}
	for r := row - 1; r >= 0; r-- {
		if strings.TrimSpace(b.lines[r]) != "" {
			return r, true
		}
	}
	return 0, false
}

// DeleteRows removes rows start through end. At least one row remains.
func (b *Buffer) DeleteRows(start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if end >= len(b.lines) {
		end = len(b.lines) - 1
	}
	if start > end {
		return
	}
	b.lines = append(b.lines[:start:start], b.lines[end+1:]...)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	b.modified = true
}

// Append adds text after the last row.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := splitLines(text)
	last := len(b.lines) - 1
	b.lines[last] += parts[0]
	b.lines = append(b.lines, parts[1:]...)
	b.modified = true
}

// BackwardsScanAndReplace replaces matches of re row by row, last row
// first. Patterns never span rows.
func (b *Buffer) BackwardsScanAndReplace(re *regexp.Regexp, replacement string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for row := len(b.lines) - 1; row >= 0; row-- {
		line := b.lines[row]
		matches := len(re.FindAllStringIndex(line, -1))
		if matches == 0 {
			continue
		}
		b.lines[row] = re.ReplaceAllString(line, replacement)
		n += matches
	}
	if n > 0 {
		b.modified = true
	}
	return n
}

// OnWillSave, OnDidSave and OnDidDestroy implement host.Buffer.
func (b *Buffer) OnWillSave(fn func()) host.Disposable      { return b.willSave.add(fn) }
func (b *Buffer) OnDidSave(fn func(string)) host.Disposable { return b.didSave.add(fn) }
func (b *Buffer) OnDidDestroy(fn func()) host.Disposable    { return b.destroy.add(fn) }

// Render runs the will-save callbacks and returns the content encoded the
// way Save would write it, without touching the disk.
func (b *Buffer) Render() ([]byte, error) {
	if b.IsDestroyed() {
		return nil, ErrBufferDestroyed
	}
	for _, fn := range b.willSave.snapshot() {
		fn()
	}
	b.mu.RLock()
	text := strings.Join(b.lines, b.lineEndingLocked())
	cs := b.encoding
	b.mu.RUnlock()
	return Encode(cs, text)
}

func (b *Buffer) lineEndingLocked() string {
	if b.lineEnding != "" {
		return b.lineEnding
	}
	return b.detected
}

// Save writes the buffer to its path.
func (b *Buffer) Save() error {
	return b.SaveAs("")
}

// SaveAs writes the buffer to path and adopts it. An empty path keeps the
// current one. Will-save callbacks run before encoding; did-save callbacks
// run after a successful write.
func (b *Buffer) SaveAs(path string) error {
	if path == "" {
		path = b.Path()
	}
	if path == "" {
		return ErrNoPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	data, err := b.Render()
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", abs, err)
	}

	b.mu.Lock()
	b.path = abs
	b.modified = false
	b.mu.Unlock()

	for _, fn := range b.didSave.snapshot() {
		fn(abs)
	}
	return nil
}

// Destroy releases the buffer. Destroy callbacks run once.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	b.mu.Unlock()

	for _, fn := range b.destroy.snapshot() {
		fn()
	}
	b.willSave.clear()
	b.didSave.clear()
	b.destroy.clear()
}

// IsDestroyed reports whether Destroy ran.
func (b *Buffer) IsDestroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

var _ host.Buffer = (*Buffer)(nil)
