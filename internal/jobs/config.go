package jobs

import (
	"fmt"
	"strings"

	"captiond/internal/language"
	"captiond/internal/services"
	"captiond/internal/subtitle"
)

// Task selects the transcription engine mode.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// Quality is the coarse burn-in tier mapped to a video codec by the
// pipeline.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// BurnInOptions configure the optional hard-sub stage.
type BurnInOptions struct {
	Enabled        bool
	StyleID        string
	StyleOverrides map[string]any
	Container      string
	Quality        Quality
}

// TranscriptionConfig carries the immutable request parameters attached to a
// job at creation. Normalize must be called before the config is stored.
type TranscriptionConfig struct {
	Language       string
	Task           Task
	OutputFormat   subtitle.Format
	VADFilter      bool
	WordTimestamps bool
	SpeakerCount   *int
	EmbedSoftSubs  bool
	BurnIn         BurnInOptions
}

// Normalize fills defaults, normalizes the language code, and validates the
// enumerated fields.
func (c *TranscriptionConfig) Normalize() error {
	c.Language = language.Normalize(c.Language)

	if c.Task == "" {
		c.Task = TaskTranscribe
	}
	if c.Task != TaskTranscribe && c.Task != TaskTranslate {
		return fmt.Errorf("%w: task %q must be transcribe or translate", services.ErrValidation, c.Task)
	}

	if c.OutputFormat == "" {
		c.OutputFormat = subtitle.FormatSRT
	}
	format, ok := subtitle.ParseFormat(string(c.OutputFormat))
	if !ok {
		return fmt.Errorf("%w: unsupported output format %q", services.ErrValidation, c.OutputFormat)
	}
	c.OutputFormat = format

	if c.SpeakerCount != nil && *c.SpeakerCount < 1 {
		return fmt.Errorf("%w: speaker count %d must be at least 1", services.ErrValidation, *c.SpeakerCount)
	}

	if c.BurnIn.Enabled {
		if c.BurnIn.StyleID == "" {
			c.BurnIn.StyleID = "default"
		}
		c.BurnIn.Container = strings.ToLower(strings.TrimSpace(c.BurnIn.Container))
		if c.BurnIn.Container == "" {
			c.BurnIn.Container = "mp4"
		}
		switch c.BurnIn.Container {
		case "mp4", "mkv", "webm":
		default:
			return fmt.Errorf("%w: burn-in container %q must be mp4, mkv, or webm", services.ErrValidation, c.BurnIn.Container)
		}
		if c.BurnIn.Quality == "" {
			c.BurnIn.Quality = QualityMedium
		}
		switch c.BurnIn.Quality {
		case QualityLow, QualityMedium, QualityHigh:
		default:
			return fmt.Errorf("%w: burn-in quality %q must be low, medium, or high", services.ErrValidation, c.BurnIn.Quality)
		}
	}
	return nil
}
