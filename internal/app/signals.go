package app

import (
	"context"

	"github.com/zoobzio/capitan"

	"github.com/dshills/edconf/internal/editorconfig/coordinator"
)

// hookSignals logs the coordinator's lifecycle signals.
func (app *Application) hookSignals() []*capitan.Listener {
	log := app.logger.WithComponent("signals")

	return []*capitan.Listener{
		capitan.Hook(coordinator.SettingsApplied, func(_ context.Context, e *capitan.Event) {
			path, _ := coordinator.KeyPath.From(e)
			sev, _ := coordinator.KeySeverity.From(e)
			log.WithFields(map[string]any{"path": path, "severity": sev}).Debug("settings applied")
		}),
		capitan.Hook(coordinator.ResolveFailed, func(_ context.Context, e *capitan.Event) {
			path, _ := coordinator.KeyPath.From(e)
			msg, _ := coordinator.KeyError.From(e)
			log.WithField("path", path).Debug("resolve failed signal: %s", msg)
		}),
		capitan.Hook(coordinator.ConfigChanged, func(_ context.Context, e *capitan.Event) {
			path, _ := coordinator.KeyPath.From(e)
			n, _ := coordinator.KeyBuffers.From(e)
			log.WithField("path", path).Info("config changed, %d buffers affected", n)
		}),
		capitan.Hook(coordinator.BufferReleased, func(_ context.Context, e *capitan.Event) {
			path, _ := coordinator.KeyPath.From(e)
			log.WithField("path", path).Debug("buffer released")
		}),
	}
}
