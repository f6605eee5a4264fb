package ffmpeg

import (
	"fmt"
	"math"
	"strings"

	"captiond/internal/subtitle"
)

// forceStyle renders a style as an ffmpeg subtitles-filter force_style
// argument. Colors use the filter's &HAABBGGRR form; the background alpha
// comes from the style's opacity (00 opaque, FF transparent).
func forceStyle(s subtitle.Style) string {
	boldFlag, italicFlag := 0, 0
	switch s.FontStyle {
	case "bold":
		boldFlag = -1
	case "italic":
		italicFlag = -1
	}

	backAlpha := int(math.Round((1 - s.BackgroundOpacity) * 255))
	if backAlpha < 0 {
		backAlpha = 0
	}
	if backAlpha > 255 {
		backAlpha = 255
	}

	parts := []string{
		"FontName=" + s.FontFamily,
		fmt.Sprintf("FontSize=%d", s.FontSize),
		fmt.Sprintf("PrimaryColour=&H00%s", subtitle.ASSColor(s.FontColor)),
		fmt.Sprintf("OutlineColour=&H00%s", subtitle.ASSColor(s.OutlineColor)),
		fmt.Sprintf("BackColour=&H%02X%s", backAlpha, subtitle.ASSColor(s.BackgroundColor)),
		fmt.Sprintf("Bold=%d", boldFlag),
		fmt.Sprintf("Italic=%d", italicFlag),
		"BorderStyle=1",
		fmt.Sprintf("Outline=%d", s.OutlineWidth),
		fmt.Sprintf("Shadow=%d", s.ShadowDepth),
		fmt.Sprintf("Alignment=%d", subtitle.ASSAlignment(s.Position, s.Alignment)),
		fmt.Sprintf("MarginL=%d", s.HorizontalMargin),
		fmt.Sprintf("MarginR=%d", s.HorizontalMargin),
		fmt.Sprintf("MarginV=%d", s.VerticalMargin),
	}
	return strings.Join(parts, ",")
}
