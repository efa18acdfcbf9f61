package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/edconf/internal/config/loader"
	"github.com/dshills/edconf/internal/editorconfig/settings"
)

// Config is the typed edconf configuration.
type Config struct {
	Editor  EditorSection           `toml:"editor"`
	Core    CoreSection             `toml:"core"`
	Scopes  map[string]ScopeSection `toml:"scopes"`
	Logging LoggingSection          `toml:"logging"`
	Lookup  LookupSection           `toml:"lookup"`
	Watch   WatchSection            `toml:"watch"`
}

// EditorSection holds global editor defaults.
type EditorSection struct {
	TabLength           int  `toml:"tab_length"`
	SoftTabs            bool `toml:"soft_tabs"`
	PreferredLineLength int  `toml:"preferred_line_length"`
}

// CoreSection holds global file defaults.
type CoreSection struct {
	FileEncoding string `toml:"file_encoding"`
}

// ScopeSection overrides global defaults for one scope. Nil fields inherit.
type ScopeSection struct {
	TabLength           *int    `toml:"tab_length"`
	SoftTabs            *bool   `toml:"soft_tabs"`
	PreferredLineLength *int    `toml:"preferred_line_length"`
	FileEncoding        *string `toml:"file_encoding"`
}

// LoggingSection configures the logger.
type LoggingSection struct {
	Level string `toml:"level"`
}

// LookupSection configures EditorConfig file discovery.
type LookupSection struct {
	// ConfigName is the base name of EditorConfig files.
	ConfigName string `toml:"config_name"`
}

// WatchSection configures the config-file watcher.
type WatchSection struct {
	// DebounceMS coalesces bursts of file events, in milliseconds.
	DebounceMS int `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorSection{
			TabLength:           2,
			SoftTabs:            true,
			PreferredLineLength: 80,
		},
		Core:    CoreSection{FileEncoding: "utf8"},
		Scopes:  map[string]ScopeSection{},
		Logging: LoggingSection{Level: "info"},
		Lookup:  LookupSection{ConfigName: ".editorconfig"},
		Watch:   WatchSection{DebounceMS: 100},
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "edconf", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "edconf", "config.toml")
}

// Options controls Load.
type Options struct {
	// Path of the TOML file. A missing file is not an error.
	Path string
	// FS overrides the file system, mainly for tests.
	FS loader.FileSystem
	// Env overrides the environment loader. Nil uses EDCONF_* variables.
	Env loader.Loader
}

// Load builds a Config from defaults, the TOML file and the environment.
func Load(opts Options) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}
	env := opts.Env
	if env == nil {
		env = loader.NewEnvLoader(loader.EnvPrefix)
	}

	fileCfg, err := loader.NewTOMLLoaderWithFS(fsys, opts.Path).Load()
	if err != nil {
		return nil, err
	}
	envCfg, err := env.Load()
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	merged := loader.DeepMerge(loader.Clone(fileCfg), envCfg)
	cfg := Default()
	if len(merged) > 0 {
		if err := decode(merged, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode lays the merged map over cfg. Keys absent from the map keep their
// defaults.
func decode(m map[string]any, cfg *Config) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			return &loader.ParseError{Path: "<merged>", Message: de.Error(), Err: err}
		}
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate checks value ranges and normalizes encodings.
func (c *Config) Validate() error {
	var errs []error
	positive := func(path string, v int) {
		if v <= 0 {
			errs = append(errs, &ValidationError{Path: path, Value: v, Message: "must be positive"})
		}
	}

	positive("editor.tab_length", c.Editor.TabLength)
	positive("editor.preferred_line_length", c.Editor.PreferredLineLength)
	c.Core.FileEncoding = settings.NormalizeCharset(c.Core.FileEncoding)
	if c.Core.FileEncoding == "" {
		errs = append(errs, &ValidationError{Path: "core.file_encoding", Value: "", Message: "must not be empty"})
	}
	if c.Watch.DebounceMS < 0 {
		errs = append(errs, &ValidationError{Path: "watch.debounce_ms", Value: c.Watch.DebounceMS, Message: "must not be negative"})
	}
	if c.Lookup.ConfigName == "" || filepath.Base(c.Lookup.ConfigName) != c.Lookup.ConfigName {
		errs = append(errs, &ValidationError{Path: "lookup.config_name", Value: c.Lookup.ConfigName, Message: "must be a bare file name"})
	}

	for name, sc := range c.Scopes {
		if sc.TabLength != nil {
			positive("scopes."+name+".tab_length", *sc.TabLength)
		}
		if sc.PreferredLineLength != nil {
			positive("scopes."+name+".preferred_line_length", *sc.PreferredLineLength)
		}
		if sc.FileEncoding != nil {
			enc := settings.NormalizeCharset(*sc.FileEncoding)
			sc.FileEncoding = &enc
			c.Scopes[name] = sc
		}
	}

	return errors.Join(errs...)
}
