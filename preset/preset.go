// Package preset reads and writes welding parameter presets.
//
// Presets are flat mappings of parameter names to values, stored as YAML
// (.yaml, .yml) or JSON (.json, .json5; JSON5 also accepts comments and
// trailing commas).
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v2"

	"ptacam/toolpath"
)

var ErrUnknownFormat = errors.New("unknown preset format")

type Format int

const (
	YAML Format = iota
	JSON
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json", ".json5":
		return JSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads the preset at path.
func Load(path string) (toolpath.Raw, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

func Parse(data []byte, format Format) (toolpath.Raw, error) {
	raw := toolpath.Raw{}

	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &raw)
	case JSON:
		err = json5.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return raw, nil
}

// ApplyOverrides returns a copy of raw with each "key=value" setting applied.
// Values that look like booleans or numbers are stored as such.
func ApplyOverrides(raw toolpath.Raw, settings []string) (toolpath.Raw, error) {
	out := make(toolpath.Raw, len(raw)+len(settings))
	for k, v := range raw {
		out[k] = v
	}

	for _, s := range settings {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("override %q is not key=value", s)
		}
		key := strings.TrimSpace(s[:eq])
		out[key] = guess(strings.TrimSpace(s[eq+1:]))
	}

	return out, nil
}

func guess(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Marshal dumps p as a YAML preset under its canonical parameter names.
func Marshal(p toolpath.Params) ([]byte, error) {
	return yaml.Marshal(p)
}

// Save writes p to path in the format its extension selects.
func Save(path string, p toolpath.Params) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if format != YAML {
		return fmt.Errorf("%w: can only save YAML presets, not %s", ErrUnknownFormat, path)
	}

	data, err := Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
