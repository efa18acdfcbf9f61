package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/rivo/uniseg"

	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/workspace"
)

// FindingKind classifies a check finding.
type FindingKind string

const (
	// FindingFormat means saving would change the file.
	FindingFormat FindingKind = "format"
	// FindingLineLength means a line is wider than max_line_length.
	FindingLineLength FindingKind = "line-length"
)

// Finding is one problem reported by Check.
type Finding struct {
	Path    string
	Line    int // 1-based, 0 for whole-file findings
	Kind    FindingKind
	Message string
}

// Open opens every path and waits until their rules are resolved and
// applied. Files that fail to open are reported in the returned ErrorList
// and skipped.
func (app *Application) Open(paths ...string) ([]*workspace.Editor, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	var errs ErrorList
	seen := make(map[*workspace.Editor]bool)
	editors := make([]*workspace.Editor, 0, len(paths))
	for _, p := range paths {
		ed, err := app.workspace.Open(p)
		if err != nil {
			errs.Add(NewOperationError("open", p, err))
			continue
		}
		if !seen[ed] {
			seen[ed] = true
			editors = append(editors, ed)
		}
	}
	app.coordinator.Wait()
	return editors, errs.AsError()
}

// Show resolves paths and returns the state of each buffer.
func (app *Application) Show(paths ...string) ([]state.Snapshot, error) {
	editors, openErr := app.Open(paths...)
	if editors == nil {
		return nil, openErr
	}

	errs := carry(openErr)

	snaps := make([]state.Snapshot, 0, len(editors))
	for _, ed := range editors {
		snap, ok := app.coordinator.Snapshot(ed.Buffer().ID())
		if !ok {
			errs.Add(NewOperationError("show", ed.Path(), ErrNotResolved))
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, errs.AsError()
}

// Check reports, without writing anything, the files saving would change
// and the lines wider than their max_line_length.
func (app *Application) Check(paths ...string) ([]Finding, error) {
	editors, openErr := app.Open(paths...)
	if editors == nil {
		return nil, openErr
	}

	errs := carry(openErr)

	var findings []Finding
	for _, ed := range editors {
		fs, err := app.checkEditor(ed)
		if err != nil {
			errs.Add(NewOperationError("check", ed.Path(), err))
			continue
		}
		findings = append(findings, fs...)
	}
	return findings, errs.AsError()
}

func (app *Application) checkEditor(ed *workspace.Editor) ([]Finding, error) {
	path := ed.Path()
	buf := ed.TextBuffer()

	var findings []Finding
	if snap, ok := app.coordinator.Snapshot(buf.ID()); ok {
		if limit, set := snap.Settings.MaxLineLength.Get(); set {
			findings = append(findings, longLines(path, buf, limit, ed.TabLength())...)
		}
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Render runs the pre-save rules on the in-memory copy only.
	rendered, err := buf.Render()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(onDisk, rendered) {
		findings = append(findings, Finding{
			Path:    path,
			Kind:    FindingFormat,
			Message: "would be rewritten on save",
		})
	}
	return findings, nil
}

// Fix saves every path through the pre-save rules, line-ending and charset
// settings. It returns the paths whose content changed.
func (app *Application) Fix(paths ...string) ([]string, error) {
	editors, openErr := app.Open(paths...)
	if editors == nil {
		return nil, openErr
	}

	errs := carry(openErr)

	var changed []string
	for _, ed := range editors {
		path := ed.Path()
		before, err := os.ReadFile(path)
		if err != nil {
			errs.Add(NewOperationError("fix", path, err))
			continue
		}
		if err := ed.TextBuffer().Save(); err != nil {
			errs.Add(NewOperationError("fix", path, err))
			continue
		}
		after, err := os.ReadFile(path)
		if err != nil {
			errs.Add(NewOperationError("fix", path, err).WithContext("re-reading"))
			continue
		}
		if !bytes.Equal(before, after) {
			changed = append(changed, path)
			app.logger.WithField("path", path).Info("rewritten")
		}
	}
	app.coordinator.Wait()
	return changed, errs.AsError()
}

// carry starts a new ErrorList holding the errors of err.
func carry(err error) *ErrorList {
	errs := &ErrorList{}
	var list *ErrorList
	if errors.As(err, &list) {
		errs.errors = append(errs.errors, list.errors...)
		return errs
	}
	errs.Add(err)
	return errs
}

func longLines(path string, buf *workspace.Buffer, limit, tabWidth int) []Finding {
	var out []Finding
	for row := 0; row < buf.LineCount(); row++ {
		if w := displayWidth(buf.LineForRow(row), tabWidth); w > limit {
			out = append(out, Finding{
				Path:    path,
				Line:    row + 1,
				Kind:    FindingLineLength,
				Message: fmt.Sprintf("%d columns, limit %d", w, limit),
			})
		}
	}
	return out
}

// displayWidth returns the number of terminal columns line occupies, with
// tabs expanded to the next multiple of tabWidth.
func displayWidth(line string, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	width := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		if g.Str() == "\t" {
			width += tabWidth - width%tabWidth
			continue
		}
		width += g.Width()
	}
	return width
}
