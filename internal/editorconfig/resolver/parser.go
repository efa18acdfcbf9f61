package resolver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"

	"github.com/dshills/edconf/internal/editorconfig/settings"
)

// DefaultConfigName is the name of EditorConfig files.
const DefaultConfigName = editorconfig.ConfigNameDefault

// EditorConfigParser reads `.editorconfig` files from disk, walking up the
// directory ancestry of the target file until a root file is found.
type EditorConfigParser struct {
	// ConfigName overrides the file name looked up in each directory.
	ConfigName string
}

// NewEditorConfigParser creates a parser for files named configName, or
// `.editorconfig` when configName is empty.
func NewEditorConfigParser(configName string) *EditorConfigParser {
	if configName == "" {
		configName = DefaultConfigName
	}
	return &EditorConfigParser{ConfigName: configName}
}

// Parse returns the merged rule set that applies to path.
func (p *EditorConfigParser) Parse(ctx context.Context, path string) (settings.RawConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	def, err := editorconfig.GetDefinitionForFilenameWithConfigname(abs, p.ConfigName)
	if err != nil {
		return nil, err
	}
	return FromStrings(def.Raw), nil
}

// FromStrings converts a string-valued rule set the way EditorConfig parsers
// type their values: "true" and "false" become booleans, everything else
// stays a string. Keys are lowercased.
func FromStrings(values map[string]string) settings.RawConfig {
	raw := make(settings.RawConfig, len(values))
	for k, v := range values {
		key := strings.ToLower(k)
		switch strings.ToLower(v) {
		case "true":
			raw[key] = true
		case "false":
			raw[key] = false
		default:
			raw[key] = v
		}
	}
	return raw
}
