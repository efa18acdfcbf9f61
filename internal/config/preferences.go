package config

import (
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// Preferences serves a Config as host preferences. Scope sections override
// the global values field by field.
type Preferences struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewPreferences wraps cfg. A nil cfg uses the defaults.
func NewPreferences(cfg *Config) *Preferences {
	if cfg == nil {
		cfg = Default()
	}
	return &Preferences{cfg: cfg}
}

// Replace swaps the underlying configuration, e.g. after a reload.
func (p *Preferences) Replace(cfg *Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

// Config returns the current configuration.
func (p *Preferences) Config() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

func (p *Preferences) scope(scope host.Scope) (ScopeSection, *Config) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Scopes[string(scope)], p.cfg
}

// TabLength implements host.Preferences.
func (p *Preferences) TabLength(scope host.Scope) int {
	sc, cfg := p.scope(scope)
	if sc.TabLength != nil {
		return *sc.TabLength
	}
	return cfg.Editor.TabLength
}

// SoftTabs implements host.Preferences.
func (p *Preferences) SoftTabs(scope host.Scope) bool {
	sc, cfg := p.scope(scope)
	if sc.SoftTabs != nil {
		return *sc.SoftTabs
	}
	return cfg.Editor.SoftTabs
}

// PreferredLineLength implements host.Preferences.
func (p *Preferences) PreferredLineLength(scope host.Scope) int {
	sc, cfg := p.scope(scope)
	if sc.PreferredLineLength != nil {
		return *sc.PreferredLineLength
	}
	return cfg.Editor.PreferredLineLength
}

// FileEncoding implements host.Preferences.
func (p *Preferences) FileEncoding(scope host.Scope) string {
	sc, cfg := p.scope(scope)
	if sc.FileEncoding != nil {
		return *sc.FileEncoding
	}
	return cfg.Core.FileEncoding
}

var _ host.Preferences = (*Preferences)(nil)
