package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"captiond/internal/services"
)

// Render serializes a track to the requested format. It is deterministic and
// side-effect free; use WriteFile to persist the result.
func Render(track *Track, format Format) (string, error) {
	if track == nil {
		return "", fmt.Errorf("%w: track is nil", services.ErrValidation)
	}
	switch format {
	case FormatSRT:
		return renderSRT(track), nil
	case FormatVTT:
		return renderVTT(track), nil
	case FormatASS:
		return renderASS(track), nil
	case FormatTXT:
		return renderTXT(track), nil
	case FormatJSON:
		return renderJSON(track)
	default:
		return "", fmt.Errorf("%w: unsupported subtitle format %q", services.ErrValidation, format)
	}
}

// WriteFile renders the track and writes it with a UTF-8 BOM, creating parent
// directories as needed. Players on some platforms refuse BOM-less SRT.
func WriteFile(track *Track, format Format, path string) error {
	content, err := Render(track, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	bom := []byte{0xEF, 0xBB, 0xBF}
	if err := os.WriteFile(path, append(bom, content...), 0o644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return nil
}

func renderSRT(track *Track) string {
	lines := make([]string, 0, len(track.Segments)*4)
	for _, segment := range track.Segments {
		lines = append(lines,
			strconv.Itoa(segment.Index),
			formatTimestampSRT(segment.Start)+" --> "+formatTimestampSRT(segment.End),
			segment.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func renderVTT(track *Track) string {
	lines := make([]string, 0, len(track.Segments)*4+1)
	lines = append(lines, "WEBVTT\n")
	for _, segment := range track.Segments {
		lines = append(lines,
			strconv.Itoa(segment.Index),
			formatTimestampVTT(segment.Start)+" --> "+formatTimestampVTT(segment.End),
			segment.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func renderTXT(track *Track) string {
	texts := make([]string, 0, len(track.Segments))
	for _, segment := range track.Segments {
		texts = append(texts, segment.Text)
	}
	return strings.Join(texts, "\n\n")
}

type jsonSegment struct {
	Index      int      `json:"index"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

type jsonTrack struct {
	Language string        `json:"language"`
	Segments []jsonSegment `json:"segments"`
}

func renderJSON(track *Track) (string, error) {
	payload := jsonTrack{Language: track.Language, Segments: make([]jsonSegment, 0, len(track.Segments))}
	for _, segment := range track.Segments {
		payload.Segments = append(payload.Segments, jsonSegment{
			Index:      segment.Index,
			StartTime:  segment.Start,
			EndTime:    segment.End,
			Text:       segment.Text,
			Confidence: segment.Confidence,
		})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal track: %w", err)
	}
	return string(data), nil
}
