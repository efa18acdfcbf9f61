package coordinator

import "github.com/zoobzio/capitan"

// Resolution signals.
var (
	// SettingsApplied is emitted when resolved settings reach a buffer's
	// editors.
	SettingsApplied = capitan.NewSignal(
		"edconf.settings.applied",
		"EditorConfig settings applied to a buffer",
	)

	// ResolveFailed is emitted when a lookup failed and previous settings
	// were kept.
	ResolveFailed = capitan.NewSignal(
		"edconf.resolve.failed",
		"EditorConfig lookup failed",
	)

	// ConfigChanged is emitted when a saved or modified config file
	// schedules re-resolution of the buffers below it.
	ConfigChanged = capitan.NewSignal(
		"edconf.config.changed",
		"EditorConfig file changed",
	)

	// BufferReleased is emitted when a destroyed buffer is forgotten.
	BufferReleased = capitan.NewSignal(
		"edconf.buffer.released",
		"Buffer no longer tracked",
	)
)

// Signal fields.
var (
	KeyPath     = capitan.NewStringKey("path")
	KeySeverity = capitan.NewStringKey("severity")
	KeyError    = capitan.NewStringKey("error")
	KeyBuffers  = capitan.NewIntKey("buffers")
)
