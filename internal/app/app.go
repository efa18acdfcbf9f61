// Package app wires the EditorConfig engine to a headless workspace and
// exposes the file operations behind the edconf commands.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"

	"github.com/dshills/edconf/internal/config"
	"github.com/dshills/edconf/internal/config/loader"
	"github.com/dshills/edconf/internal/editorconfig/apply"
	"github.com/dshills/edconf/internal/editorconfig/coordinator"
	"github.com/dshills/edconf/internal/editorconfig/resolver"
	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/logging"
	"github.com/dshills/edconf/internal/notify"
	"github.com/dshills/edconf/internal/workspace"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the TOML configuration file. Empty uses
	// config.DefaultPath.
	ConfigPath string

	// ConfigName overrides the EditorConfig file name from the
	// configuration.
	ConfigName string

	// LogLevel overrides the configured logging level.
	LogLevel string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer

	// Env and FS override configuration sources, mainly for tests.
	Env loader.Loader
	FS  loader.FileSystem

	// Parser replaces the EditorConfig file parser.
	Parser resolver.Parser
}

// Application owns one workspace and the coordinator that keeps its buffers
// in line with their EditorConfig rules.
type Application struct {
	mu sync.Mutex

	config *config.Config
	prefs  *config.Preferences
	logger *logging.Logger

	workspace   *workspace.Workspace
	resolver    *resolver.Resolver
	applier     *apply.Applier
	registry    *state.Registry
	notifier    *notify.Notifier
	coordinator *coordinator.Coordinator

	configName string
	hooks      []*capitan.Listener

	closed atomic.Bool
	opts   Options
}

// New creates an Application and activates its coordinator.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(config.Options{Path: path, FS: app.opts.FS, Env: app.opts.Env})
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	// 2. Logging
	levelName := cfg.Logging.Level
	if app.opts.LogLevel != "" {
		levelName = app.opts.LogLevel
	}
	level, ok := logging.ParseLevel(levelName)
	if !ok {
		return &InitError{Component: "logging", Err: fmt.Errorf("unknown level %q", levelName)}
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.logger = logging.New(logCfg)

	// 3. Host
	app.prefs = config.NewPreferences(cfg)
	app.workspace = workspace.New(app.prefs)

	// 4. Engine
	app.configName = cfg.Lookup.ConfigName
	if app.opts.ConfigName != "" {
		app.configName = app.opts.ConfigName
	}
	parser := app.opts.Parser
	if parser == nil {
		parser = resolver.NewEditorConfigParser(app.configName)
	}
	app.resolver = resolver.New(parser)
	app.applier = apply.New(app.prefs, app.workspace, nil)
	app.registry = state.NewRegistry()
	app.notifier = notify.New()
	app.coordinator = coordinator.New(app.workspace, app.resolver, app.applier, app.registry, coordinator.Options{
		ConfigName: app.configName,
		Notifier:   app.notifier,
		Logger:     app.logger,
	})

	// 5. Signal hooks
	app.hooks = app.hookSignals()

	app.coordinator.Activate(context.Background())
	app.logger.WithField("config", path).Debug("bootstrap complete")
	return nil
}

// Shutdown deactivates the coordinator and closes every editor.
func (app *Application) Shutdown() {
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	app.coordinator.Deactivate()
	app.workspace.CloseAll()
	app.notifier.Close()

	app.mu.Lock()
	hooks := app.hooks
	app.hooks = nil
	app.mu.Unlock()
	for _, l := range hooks {
		l.Close()
	}
}

// Reload re-reads the configuration and re-applies every resolved buffer
// with the new host defaults.
func (app *Application) Reload() error {
	if app.closed.Load() {
		return ErrClosed
	}
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(config.Options{Path: path, FS: app.opts.FS, Env: app.opts.Env})
	if err != nil {
		return NewOperationError("reload", path, err)
	}

	app.mu.Lock()
	app.config = cfg
	app.mu.Unlock()

	app.prefs.Replace(cfg)
	app.coordinator.ReapplyAll()
	return nil
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.config
}

// ConfigName returns the EditorConfig file name in use.
func (app *Application) ConfigName() string { return app.configName }

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger { return app.logger }

// Workspace returns the headless workspace.
func (app *Application) Workspace() *workspace.Workspace { return app.workspace }

// Coordinator returns the EditorConfig coordinator.
func (app *Application) Coordinator() *coordinator.Coordinator { return app.coordinator }

// Subscribe registers an observer for buffer status changes.
func (app *Application) Subscribe(observer notify.Observer) *notify.Subscription {
	return app.notifier.Subscribe(observer)
}
