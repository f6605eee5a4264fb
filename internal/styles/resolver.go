package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"captiond/internal/subtitle"
)

//go:embed presets.toml
var embeddedPresets []byte

type presetFile struct {
	Styles map[string]map[string]any `toml:"styles"`
}

// Resolver merges named presets and caller overrides onto the default style.
type Resolver struct {
	presets map[string]map[string]any
}

// Load reads a presets file. An empty path loads the embedded defaults.
func Load(path string) (*Resolver, error) {
	data := embeddedPresets
	if strings.TrimSpace(path) != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read style presets: %w", err)
		}
		data = fileData
	}
	return parse(data)
}

func parse(data []byte) (*Resolver, error) {
	var file presetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse style presets: %w", err)
	}
	resolver := &Resolver{presets: file.Styles}
	if resolver.presets == nil {
		resolver.presets = map[string]map[string]any{}
	}
	// Reject presets that would not survive a merge so broken files fail at
	// startup instead of mid-pipeline.
	for id := range resolver.presets {
		if _, err := resolver.Resolve(id, nil); err != nil {
			return nil, fmt.Errorf("style preset %q: %w", id, err)
		}
	}
	return resolver, nil
}

// Has reports whether a preset id exists.
func (r *Resolver) Has(id string) bool {
	_, ok := r.presets[id]
	return ok
}

// IDs returns the preset ids in sorted order.
func (r *Resolver) IDs() []string {
	ids := make([]string, 0, len(r.presets))
	for id := range r.presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve merges the named preset onto the default style, applies overrides
// on top, and validates the result. A missing preset id yields the defaults
// merged with overrides, not an error.
func (r *Resolver) Resolve(id string, overrides map[string]any) (subtitle.Style, error) {
	style := subtitle.DefaultStyle()
	if preset, ok := r.presets[id]; ok {
		if err := applyFields(&style, preset); err != nil {
			return subtitle.Style{}, err
		}
	}
	if len(overrides) > 0 {
		if err := applyFields(&style, overrides); err != nil {
			return subtitle.Style{}, err
		}
	}
	if err := style.Validate(); err != nil {
		return subtitle.Style{}, err
	}
	return style, nil
}

// applyFields merges a field map onto the style by round-tripping through
// TOML: fields absent from the map keep their current values, and unknown
// keys surface as decode errors.
func applyFields(style *subtitle.Style, fields map[string]any) error {
	data, err := toml.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode style fields: %w", err)
	}
	decoder := toml.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(style); err != nil {
		return fmt.Errorf("apply style fields: %w", err)
	}
	return nil
}
