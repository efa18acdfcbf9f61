// Package config provides the host preferences of the edconf tool.
//
// Configuration is resolved from three layers, higher layers overriding
// lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← EDCONF_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/edconf/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The [editor] and [core] sections hold the global defaults EditorConfig
// falls back to for unset properties; [scopes."<scope>"] overrides them for
// a single scope such as "source.go".
//
// # Example
//
//	[editor]
//	tab_length = 4
//	soft_tabs = true
//	preferred_line_length = 100
//
//	[core]
//	file_encoding = "utf8"
//
//	[scopes."source.go"]
//	soft_tabs = false
//	tab_length = 8
package config
