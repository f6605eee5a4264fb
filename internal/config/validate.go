package config

import (
	"errors"
	"fmt"
	"sort"
)

var validOutputFormats = map[string]bool{
	"srt":  true,
	"vtt":  true,
	"ass":  true,
	"txt":  true,
	"json": true,
}

var validDevices = map[string]bool{
	"auto": true,
	"cpu":  true,
	"cuda": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	return ensurePositiveMap(map[string]int{
		"ffmpeg.probe_timeout":     c.FFmpeg.ProbeTimeout,
		"ffmpeg.extract_timeout":   c.FFmpeg.ExtractTimeout,
		"ffmpeg.burn_timeout":      c.FFmpeg.BurnTimeout,
		"ffmpeg.embed_timeout":     c.FFmpeg.EmbedTimeout,
		"ffmpeg.thumbnail_timeout": c.FFmpeg.ThumbnailTimeout,
	})
}

func (c *Config) validateWhisper() error {
	if !validDevices[c.Whisper.Device] {
		return fmt.Errorf("whisper.device must be one of auto, cpu, cuda (got %q)", c.Whisper.Device)
	}
	if c.Whisper.Timeout <= 0 {
		return errors.New("whisper.timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxConcurrentTranscriptions <= 0 {
		return errors.New("workflow.max_concurrent_transcriptions must be positive")
	}
	if !validOutputFormats[c.Workflow.DefaultOutputFormat] {
		return fmt.Errorf("workflow.default_output_format must be one of srt, vtt, ass, txt, json (got %q)", c.Workflow.DefaultOutputFormat)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
