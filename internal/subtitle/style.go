package subtitle

import (
	"fmt"

	"captiond/internal/services"
)

// Style describes presentation attributes consumed by the ASS renderer and
// the video burn-in stage. It is a value object: resolve once, never mutate.
type Style struct {
	Name              string  `toml:"name" json:"name"`
	FontFamily        string  `toml:"font_family" json:"font_family"`
	FontSize          int     `toml:"font_size" json:"font_size"`
	FontColor         string  `toml:"font_color" json:"font_color"`
	FontStyle         string  `toml:"font_style" json:"font_style"` // normal, italic, bold
	BackgroundColor   string  `toml:"background_color" json:"background_color"`
	BackgroundOpacity float64 `toml:"background_opacity" json:"background_opacity"`
	OutlineColor      string  `toml:"outline_color" json:"outline_color"`
	OutlineWidth      int     `toml:"outline_width" json:"outline_width"`
	ShadowColor       string  `toml:"shadow_color" json:"shadow_color"`
	ShadowDepth       int     `toml:"shadow_depth" json:"shadow_depth"`
	Position          string  `toml:"position" json:"position"`   // top, center, bottom
	VerticalMargin    int     `toml:"vertical_margin" json:"vertical_margin"`
	HorizontalMargin  int     `toml:"horizontal_margin" json:"horizontal_margin"`
	Alignment         string  `toml:"alignment" json:"alignment"` // left, center, right
	MaxLines          int     `toml:"max_lines" json:"max_lines"`
	MaxWidth          int     `toml:"max_width" json:"max_width"` // percent
}

// DefaultStyle returns the baseline style presets merge onto.
func DefaultStyle() Style {
	return Style{
		Name:              "default",
		FontFamily:        "Arial",
		FontSize:          24,
		FontColor:         "#FFFFFF",
		FontStyle:         "normal",
		BackgroundColor:   "#000000",
		BackgroundOpacity: 0,
		OutlineColor:      "#000000",
		OutlineWidth:      2,
		ShadowColor:       "#000000",
		ShadowDepth:       2,
		Position:          "bottom",
		VerticalMargin:    50,
		HorizontalMargin:  50,
		Alignment:         "center",
		MaxLines:          2,
		MaxWidth:          80,
	}
}

// Validate checks the style invariants: hex color grammar, numeric bounds,
// and enum fields.
func (s Style) Validate() error {
	colors := map[string]string{
		"font_color":       s.FontColor,
		"background_color": s.BackgroundColor,
		"outline_color":    s.OutlineColor,
		"shadow_color":     s.ShadowColor,
	}
	for field, value := range colors {
		if !validHexColor(value) {
			return fmt.Errorf("%w: %s %q must be #RRGGBB", services.ErrValidation, field, value)
		}
	}
	bounds := []struct {
		field    string
		value    int
		min, max int
	}{
		{"font_size", s.FontSize, 10, 72},
		{"outline_width", s.OutlineWidth, 0, 5},
		{"shadow_depth", s.ShadowDepth, 0, 10},
		{"vertical_margin", s.VerticalMargin, 0, 200},
		{"horizontal_margin", s.HorizontalMargin, 0, 200},
		{"max_lines", s.MaxLines, 1, 4},
		{"max_width", s.MaxWidth, 20, 100},
	}
	for _, b := range bounds {
		if b.value < b.min || b.value > b.max {
			return fmt.Errorf("%w: %s %d outside [%d,%d]", services.ErrValidation, b.field, b.value, b.min, b.max)
		}
	}
	if s.BackgroundOpacity < 0 || s.BackgroundOpacity > 1 {
		return fmt.Errorf("%w: background_opacity %.2f outside [0,1]", services.ErrValidation, s.BackgroundOpacity)
	}
	switch s.FontStyle {
	case "normal", "italic", "bold":
	default:
		return fmt.Errorf("%w: font_style %q must be normal, italic, or bold", services.ErrValidation, s.FontStyle)
	}
	switch s.Position {
	case "top", "center", "bottom":
	default:
		return fmt.Errorf("%w: position %q must be top, center, or bottom", services.ErrValidation, s.Position)
	}
	switch s.Alignment {
	case "left", "center", "right":
	default:
		return fmt.Errorf("%w: alignment %q must be left, center, or right", services.ErrValidation, s.Alignment)
	}
	return nil
}

func validHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}
	for _, r := range value[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
