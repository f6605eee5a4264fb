package subtitle

import (
	"strconv"
	"strings"
)

// SkippedBlock records one block the forgiving parsers dropped, so callers
// and tests can detect silent data loss instead of guessing from counts.
type SkippedBlock struct {
	// Index is the 1-based position of the block in the source text.
	Index int
	// Reason explains why the block was rejected.
	Reason string
	// Snippet is the first line of the offending block, for diagnostics.
	Snippet string
}

// ParseSRT parses SubRip content. Malformed blocks are skipped and reported;
// parsing never fails. Segment indices recorded in the source are validated
// but discarded: the returned track re-indexes by insertion order.
func ParseSRT(content string) (*Track, []SkippedBlock) {
	track := NewTrack("")
	var skipped []SkippedBlock

	content = normalizeNewlines(strings.TrimSpace(content))
	if content == "" {
		return track, nil
	}

	for i, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			skipped = append(skipped, skip(i, "incomplete block", lines))
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			skipped = append(skipped, skip(i, "malformed index", lines))
			continue
		}
		segment, reason := parseCue(lines[1], lines[2:])
		if reason != "" {
			skipped = append(skipped, skip(i, reason, lines))
			continue
		}
		track.Append(segment)
	}
	return track, skipped
}

// ParseVTT parses WebVTT content, with or without per-cue identifier lines.
// Like ParseSRT it skips malformed cues and reports them.
func ParseVTT(content string) (*Track, []SkippedBlock) {
	track := NewTrack("")
	var skipped []SkippedBlock

	content = normalizeNewlines(strings.TrimSpace(content))
	if rest, ok := strings.CutPrefix(content, "WEBVTT"); ok {
		content = strings.TrimSpace(rest)
	}
	if content == "" {
		return track, nil
	}

	for i, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		// The timing line is either the first line of the cue or the second,
		// when a cue identifier precedes it.
		timingIdx := -1
		for idx := 0; idx < len(lines) && idx < 2; idx++ {
			if strings.Contains(lines[idx], "-->") {
				timingIdx = idx
				break
			}
		}
		if timingIdx < 0 || timingIdx+1 >= len(lines) {
			skipped = append(skipped, skip(i, "missing timing line", lines))
			continue
		}
		segment, reason := parseCue(lines[timingIdx], lines[timingIdx+1:])
		if reason != "" {
			skipped = append(skipped, skip(i, reason, lines))
			continue
		}
		track.Append(segment)
	}
	return track, skipped
}

func parseCue(timing string, textLines []string) (Segment, string) {
	if !strings.Contains(timing, "-->") {
		return Segment{}, "missing timestamp separator"
	}
	parts := strings.SplitN(timing, "-->", 2)
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return Segment{}, "unparseable start timestamp"
	}
	// Trailing cue settings after the end timestamp (VTT allows them) are
	// ignored.
	endText := strings.TrimSpace(parts[1])
	if fields := strings.Fields(endText); len(fields) > 0 {
		endText = fields[0]
	}
	end, err := parseTimestamp(endText)
	if err != nil {
		return Segment{}, "unparseable end timestamp"
	}
	segment, err := NewSegment(start, end, strings.Join(textLines, "\n"))
	if err != nil {
		return Segment{}, "invalid segment: " + err.Error()
	}
	return segment, ""
}

func skip(blockIdx int, reason string, lines []string) SkippedBlock {
	snippet := ""
	if len(lines) > 0 {
		snippet = lines[0]
	}
	return SkippedBlock{Index: blockIdx + 1, Reason: reason, Snippet: snippet}
}

func normalizeNewlines(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}
