// Package state holds the EditorConfig state attached to each host buffer.
//
// Buffers are owned by the host and know nothing about EditorConfig, so the
// per-buffer records live in a Registry keyed by buffer identity. A record is
// created the first time a buffer is observed and forgotten when the buffer
// is destroyed or the engine deactivates.
package state

import (
	"sync"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/host"
)

// Severity classifies how complete the applied settings are, for status
// display only.
type Severity int

const (
	// SeverityNormal means rules were found and applied cleanly.
	SeverityNormal Severity = iota
	// SeveritySubtle means no rule applies to the buffer.
	SeveritySubtle
	// SeverityInfo means rules apply but something could not be shown.
	SeverityInfo
	// SeverityWarning means some rules carried unsupported values.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNormal:
		return "normal"
	case SeveritySubtle:
		return "subtle"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Phase is the lifecycle position of a buffer.
type Phase int

const (
	PhaseUnobserved Phase = iota
	PhaseObserved
	PhaseResolving
	PhaseApplied
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUnobserved:
		return "unobserved"
	case PhaseObserved:
		return "observed"
	case PhaseResolving:
		return "resolving"
	case PhaseApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// BufferConfigState is the EditorConfig record of one buffer.
type BufferConfigState struct {
	mu sync.RWMutex

	buffer host.Buffer

	settings      settings.Settings
	raw           settings.RawConfig
	resolvedPath  string
	requestedPath string

	severity    Severity
	diagnostics []string

	phase      Phase
	generation uint64

	subs host.CompositeDisposable
}

func newBufferConfigState(buf host.Buffer) *BufferConfigState {
	return &BufferConfigState{
		buffer:   buf,
		severity: SeveritySubtle,
		phase:    PhaseUnobserved,
	}
}

// Buffer returns the buffer the state belongs to.
func (s *BufferConfigState) Buffer() host.Buffer { return s.buffer }

// BufferID returns the identity of the owning buffer.
func (s *BufferConfigState) BufferID() host.BufferID { return s.buffer.ID() }

// Settings returns the current canonical settings.
func (s *BufferConfigState) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Raw returns a copy of the rule set that produced the current settings.
func (s *BufferConfigState) Raw() settings.RawConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Clone()
}

// ResolvedPath returns the path the current settings were resolved for.
func (s *BufferConfigState) ResolvedPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedPath
}

// Severity returns the status severity and its diagnostics.
func (s *BufferConfigState) Severity() (Severity, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.severity, append([]string(nil), s.diagnostics...)
}

// SetSeverity records a new severity. It reports whether anything changed.
func (s *BufferConfigState) SetSeverity(sev Severity, diagnostics []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.severity != sev || !equalStrings(s.diagnostics, diagnostics)
	s.severity = sev
	s.diagnostics = append([]string(nil), diagnostics...)
	return changed
}

// Phase returns the lifecycle phase.
func (s *BufferConfigState) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// SetPhase moves the buffer to p.
func (s *BufferConfigState) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// BeginResolve marks a new resolution request for path and returns its
// generation. Only the most recent generation may complete.
func (s *BufferConfigState) BeginResolve(path string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.requestedPath = path
	s.phase = PhaseResolving
	return s.generation
}

// RequestedPath returns the path of the latest resolution request.
func (s *BufferConfigState) RequestedPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestedPath
}

// Current reports whether gen is the latest resolution request.
func (s *BufferConfigState) Current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

// Update stores a resolved rule set and its normalized settings.
func (s *BufferConfigState) Update(path string, raw settings.RawConfig, st settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvedPath = path
	s.raw = raw.Clone()
	s.settings = st
}

// Subscriptions returns the disposables scoped to this buffer.
func (s *BufferConfigState) Subscriptions() *host.CompositeDisposable { return &s.subs }

// Snapshot is a read-only copy of a state for UI collaborators.
type Snapshot struct {
	BufferID     host.BufferID      `yaml:"buffer"`
	Path         string             `yaml:"path"`
	Phase        string             `yaml:"phase"`
	Severity     string             `yaml:"severity"`
	Diagnostics  []string           `yaml:"diagnostics,omitempty"`
	Settings     settings.Settings  `yaml:"settings"`
	Raw          settings.RawConfig `yaml:"raw,omitempty"`
	ResolvedPath string             `yaml:"-"`
}

// Snapshot copies the state.
func (s *BufferConfigState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		BufferID:     s.buffer.ID(),
		Path:         s.buffer.Path(),
		Phase:        s.phase.String(),
		Severity:     s.severity.String(),
		Diagnostics:  append([]string(nil), s.diagnostics...),
		Settings:     s.settings,
		Raw:          s.raw.Clone(),
		ResolvedPath: s.resolvedPath,
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
