package subtitle

import (
	"fmt"
	"strings"
)

// assAlignmentBase maps a vertical position to the ASS numpad base code.
var assAlignmentBase = map[string]int{"bottom": 1, "center": 4, "top": 7}

// assAlignmentOffset maps a horizontal alignment to the offset added to the
// base code.
var assAlignmentOffset = map[string]int{"left": 0, "center": 1, "right": 2}

// ASSAlignment computes the ASS alignment code from the combination of
// vertical position and horizontal alignment. Unknown values fall back to
// bottom/center, matching the renderer's defaults.
func ASSAlignment(position, alignment string) int {
	base, ok := assAlignmentBase[position]
	if !ok {
		base = 1
	}
	offset, ok := assAlignmentOffset[alignment]
	if !ok {
		offset = 1
	}
	return base + offset
}

// ASSColor converts a #RRGGBB hex color into the format's native BBGGRR byte
// order, upper-cased, without the &H prefix.
func ASSColor(hexColor string) string {
	hexColor = strings.TrimPrefix(hexColor, "#")
	if len(hexColor) != 6 {
		return "FFFFFF"
	}
	r, g, b := hexColor[0:2], hexColor[2:4], hexColor[4:6]
	return strings.ToUpper(b + g + r)
}

func renderASS(track *Track) string {
	style := DefaultStyle()
	if track.Style != nil {
		style = *track.Style
	}

	boldFlag, italicFlag := 0, 0
	switch style.FontStyle {
	case "bold":
		boldFlag = -1
	case "italic":
		italicFlag = -1
	}

	lines := []string{
		"[Script Info]",
		"Title: captiond export",
		"ScriptType: v4.00+",
		"",
		"[V4+ Styles]",
		"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding",
		fmt.Sprintf(
			"Style: Default,%s,%d,&H%s,&H%s,&H%s,&H%s,%d,%d,0,0,100,100,0,0,1,%d,%d,%d,%d,%d,%d,1",
			style.FontFamily,
			style.FontSize,
			ASSColor(style.FontColor),
			ASSColor(style.FontColor),
			ASSColor(style.OutlineColor),
			ASSColor(style.BackgroundColor),
			boldFlag,
			italicFlag,
			style.OutlineWidth,
			style.ShadowDepth,
			ASSAlignment(style.Position, style.Alignment),
			style.HorizontalMargin,
			style.HorizontalMargin,
			style.VerticalMargin,
		),
		"",
		"[Events]",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text",
	}

	for _, segment := range track.Segments {
		lines = append(lines, fmt.Sprintf(
			"Dialogue: 0,%s,%s,Default,,0,0,0,,%s",
			formatTimestampASS(segment.Start),
			formatTimestampASS(segment.End),
			escapeASSText(segment.Text),
		))
	}

	return strings.Join(lines, "\n")
}

// escapeASSText doubles backslashes, escapes literal braces (ASS override
// block delimiters), and converts newlines to the format's own line break.
func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "{", `\{`)
	text = strings.ReplaceAll(text, "}", `\}`)
	text = strings.ReplaceAll(text, "\n", `\N`)
	return text
}
