package workspace

import (
	"path/filepath"
	"strings"

	"github.com/dshills/edconf/internal/host"
)

// ScopePlain is the scope of files without a recognized language.
const ScopePlain host.Scope = "text.plain"

var scopesByExt = map[string]host.Scope{
	".go":       "source.go",
	".rs":       "source.rust",
	".ts":       "source.ts",
	".tsx":      "source.tsx",
	".js":       "source.js",
	".jsx":      "source.js.jsx",
	".py":       "source.python",
	".rb":       "source.ruby",
	".java":     "source.java",
	".c":        "source.c",
	".h":        "source.c",
	".cpp":      "source.cpp",
	".cc":       "source.cpp",
	".cxx":      "source.cpp",
	".hpp":      "source.cpp",
	".cs":       "source.cs",
	".swift":    "source.swift",
	".kt":       "source.kotlin",
	".lua":      "source.lua",
	".sh":       "source.shell",
	".bash":     "source.shell",
	".json":     "source.json",
	".yaml":     "source.yaml",
	".yml":      "source.yaml",
	".toml":     "source.toml",
	".xml":      "text.xml",
	".html":     "text.html.basic",
	".htm":      "text.html.basic",
	".css":      "source.css",
	".scss":     "source.css.scss",
	".md":       "text.md",
	".markdown": "text.md",
	".sql":      "source.sql",
}

var scopesByName = map[string]host.Scope{
	"makefile":      "source.makefile",
	"gnumakefile":   "source.makefile",
	"dockerfile":    "source.dockerfile",
	".editorconfig": "source.editorconfig",
}

// ScopeForPath returns the root scope of a file from its name.
func ScopeForPath(path string) host.Scope {
	if path == "" {
		return ScopePlain
	}
	base := strings.ToLower(filepath.Base(path))
	if s, ok := scopesByName[base]; ok {
		return s
	}
	if s, ok := scopesByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return s
	}
	return ScopePlain
}
