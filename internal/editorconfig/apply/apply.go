// Package apply pushes canonical EditorConfig settings onto live host
// editors, their buffers and their wrap guides.
//
// Unset fields fall back to the host's own preferences for the editor's
// scope, so re-applying after a preference change picks up the new
// defaults. Setters are only called when the target value differs.
package apply

import (
	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/host"
)

// Outcome describes one Apply call.
type Outcome struct {
	// Applied is false when the editor no longer shows the state's buffer.
	Applied bool

	Severity    state.Severity
	Diagnostics []string

	// SeverityChanged reports whether the state's severity was updated.
	SeverityChanged bool
}

// Applier applies settings using host preferences as fallbacks.
type Applier struct {
	prefs  host.Preferences
	ws     host.Workspace
	guides *GuideInterceptor
}

// New creates an Applier. ws is used to find wrap-guide views and may be nil.
func New(prefs host.Preferences, ws host.Workspace, guides *GuideInterceptor) *Applier {
	if guides == nil {
		guides = NewGuideInterceptor()
	}
	return &Applier{prefs: prefs, ws: ws, guides: guides}
}

// Guides returns the wrap-guide interceptor.
func (a *Applier) Guides() *GuideInterceptor { return a.guides }

// Apply pushes the settings of st onto ed. Nothing is touched unless ed
// still shows the buffer st belongs to.
func (a *Applier) Apply(ed host.Editor, st *state.BufferConfigState) Outcome {
	buf := ed.Buffer()
	if buf == nil || buf.ID() != st.BufferID() {
		return Outcome{}
	}

	s := st.Settings()
	scope := ed.RootScope()

	a.applyIndent(ed, s, scope)

	if want := s.TabWidth.Or(a.prefs.TabLength(scope)); want > 0 && ed.TabLength() != want {
		ed.SetTabLength(want)
	}

	if want := s.Charset.Or(a.prefs.FileEncoding(scope)); want != "" && buf.Encoding() != want {
		buf.SetEncoding(want)
	}

	length := s.MaxLineLength.Or(a.prefs.PreferredLineLength(scope))
	lengthChanged := length > 0 && ed.PreferredLineLength() != length
	if lengthChanged {
		ed.Update(host.Params{PreferredLineLength: length})
	}
	hasGuide := a.applyGuide(ed, st, lengthChanged)

	if eol, ok := s.EndOfLine.Get(); ok && buf.PreferredLineEnding() != eol.Sequence() {
		buf.SetPreferredLineEnding(eol.Sequence())
	}

	sev, diags := Assess(st.Raw(), s, hasGuide)
	changed := st.SetSeverity(sev, diags)
	return Outcome{Applied: true, Severity: sev, Diagnostics: diags, SeverityChanged: changed}
}

func (a *Applier) applyIndent(ed host.Editor, s settings.Settings, scope host.Scope) {
	var soft bool
	if style, ok := s.IndentStyle.Get(); ok {
		soft = style == settings.IndentSpace
	} else if detected, ok := ed.UsesSoftTabs(); ok {
		soft = detected
	} else {
		soft = a.prefs.SoftTabs(scope)
	}
	if ed.SoftTabs() != soft {
		ed.SetSoftTabs(soft)
	}
}

// applyGuide attaches the wrap-guide override for ed. It reports whether the
// editor has a guide view.
func (a *Applier) applyGuide(ed host.Editor, st *state.BufferConfigState, lengthChanged bool) bool {
	if a.ws == nil {
		return false
	}
	view, ok := a.ws.GuideView(ed)
	if !ok || view == nil {
		return false
	}
	owner := Owner{Editor: ed, Buffer: st.BufferID()}
	_, attached := a.guides.Attach(view, owner, func() (int, bool) {
		return st.Settings().MaxLineLength.Get()
	})
	if attached || lengthChanged {
		view.Refresh()
	}
	return true
}

// Assess derives the status severity of a buffer from its rule set.
func Assess(raw settings.RawConfig, s settings.Settings, hasGuide bool) (state.Severity, []string) {
	diags := settings.Diagnose(raw)
	if len(diags) > 0 {
		return state.SeverityWarning, diags
	}
	if s.AllUnset() {
		return state.SeveritySubtle, nil
	}
	if s.MaxLineLength.IsSet() && !hasGuide {
		return state.SeverityInfo, []string{"max_line_length: no wrap guide to display it"}
	}
	return state.SeverityNormal, nil
}
