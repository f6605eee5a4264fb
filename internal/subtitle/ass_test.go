package subtitle_test

import (
	"strings"
	"testing"

	"captiond/internal/subtitle"
)

func TestASSAlignmentCodes(t *testing.T) {
	tests := []struct {
		position  string
		alignment string
		want      int
	}{
		{"bottom", "center", 2},
		{"bottom", "left", 1},
		{"bottom", "right", 3},
		{"center", "center", 5},
		{"top", "left", 7},
		{"top", "right", 9},
		{"unknown", "unknown", 2}, // falls back to bottom/center
	}
	for _, tc := range tests {
		if got := subtitle.ASSAlignment(tc.position, tc.alignment); got != tc.want {
			t.Errorf("ASSAlignment(%q, %q) = %d, want %d", tc.position, tc.alignment, got, tc.want)
		}
	}
}

func TestASSColorByteOrder(t *testing.T) {
	if got := subtitle.ASSColor("#FF8800"); got != "0088FF" {
		t.Fatalf("ASSColor(#FF8800) = %q, want 0088FF", got)
	}
	if got := subtitle.ASSColor("#ffffff"); got != "FFFFFF" {
		t.Fatalf("ASSColor(#ffffff) = %q, want FFFFFF", got)
	}
	if got := subtitle.ASSColor("bogus"); got != "FFFFFF" {
		t.Fatalf("ASSColor(bogus) = %q, want fallback FFFFFF", got)
	}
}

func TestRenderASSHeaderAndDialogue(t *testing.T) {
	track := subtitle.NewTrack("en")
	style := subtitle.DefaultStyle()
	style.FontStyle = "bold"
	style.Position = "top"
	style.Alignment = "right"
	track.Style = &style

	seg, err := subtitle.NewSegment(2.5, 65.03, "brace {test}\nand \\slash")
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	track.Append(seg)

	content, err := subtitle.Render(track, subtitle.FormatASS)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(content, "[Script Info]") || !strings.Contains(content, "[V4+ Styles]") {
		t.Fatalf("missing header sections:\n%s", content)
	}
	// Bold flag -1, italic 0, alignment 9 (top base 7 + right offset 2).
	if !strings.Contains(content, ",-1,0,0,0,100,100,0,0,1,2,2,9,") {
		t.Fatalf("style line flags wrong:\n%s", content)
	}
	// Centisecond precision, no leading zero on hours.
	if !strings.Contains(content, "Dialogue: 0,0:00:02.50,0:01:05.03,Default,,0,0,0,,") {
		t.Fatalf("dialogue timing wrong:\n%s", content)
	}
	if !strings.Contains(content, `brace \{test\}\Nand \\slash`) {
		t.Fatalf("text escaping wrong:\n%s", content)
	}
}
