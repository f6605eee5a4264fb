package subtitle

import (
	"fmt"
	"strings"

	"captiond/internal/services"
)

// Format identifies a subtitle interchange format.
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
)

var allFormats = []Format{FormatSRT, FormatVTT, FormatASS, FormatTXT, FormatJSON}

// AllFormats returns the supported output formats in presentation order.
func AllFormats() []Format {
	cp := make([]Format, len(allFormats))
	copy(cp, allFormats)
	return cp
}

// ParseFormat converts a string (optionally with a leading dot) into a known
// Format.
func ParseFormat(value string) (Format, bool) {
	normalized := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), ".")))
	for _, format := range allFormats {
		if format == normalized {
			return format, true
		}
	}
	return "", false
}

// Segment is one timed line of subtitle text. Index is always assigned by the
// owning track; values passed by callers or read from files are discarded.
type Segment struct {
	Index      int
	Start      float64 // seconds
	End        float64 // seconds
	Text       string
	Confidence *float64 // optional, [0,1]
}

// NewSegment validates and constructs a segment. The index is left at zero
// until the segment is appended to a track.
func NewSegment(start, end float64, text string) (Segment, error) {
	if start < 0 {
		return Segment{}, fmt.Errorf("%w: segment start %.3f is negative", services.ErrValidation, start)
	}
	if end <= start {
		return Segment{}, fmt.Errorf("%w: segment end %.3f must be greater than start %.3f", services.ErrValidation, end, start)
	}
	if strings.TrimSpace(text) == "" {
		return Segment{}, fmt.Errorf("%w: segment text must not be empty", services.ErrValidation)
	}
	return Segment{Start: start, End: end, Text: text}, nil
}

// WithConfidence returns a copy of the segment carrying a confidence score.
func (s Segment) WithConfidence(confidence float64) (Segment, error) {
	if confidence < 0 || confidence > 1 {
		return Segment{}, fmt.Errorf("%w: confidence %.3f outside [0,1]", services.ErrValidation, confidence)
	}
	s.Confidence = &confidence
	return s, nil
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Track is an ordered collection of segments plus language and style
// metadata. Order is insertion order; Append re-indexes.
type Track struct {
	Language string
	Segments []Segment
	Style    *Style
}

// NewTrack constructs an empty track for the given ISO 639-1 language code.
func NewTrack(lang string) *Track {
	return &Track{Language: lang}
}

// Append adds a segment and assigns its 1-based index.
func (t *Track) Append(segment Segment) {
	segment.Index = len(t.Segments) + 1
	t.Segments = append(t.Segments, segment)
}

// Duration returns the end time of the final segment, or 0 for an empty
// track.
func (t *Track) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// SegmentAt returns the segment active at the given time.
func (t *Track) SegmentAt(at float64) (Segment, bool) {
	for _, segment := range t.Segments {
		if segment.Start <= at && at <= segment.End {
			return segment, true
		}
	}
	return Segment{}, false
}
