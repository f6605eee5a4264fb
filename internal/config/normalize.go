package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeWhisper()
	if err := c.normalizeTranscriptCache(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.StylePresetsPath) != "" {
		if c.Paths.StylePresetsPath, err = expandPath(c.Paths.StylePresetsPath); err != nil {
			return fmt.Errorf("paths.style_presets_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.FFmpeg.ProbeBinary) == "" {
		c.FFmpeg.ProbeBinary = defaultFFprobeBinary
	}
	if c.FFmpeg.ProbeTimeout == 0 {
		c.FFmpeg.ProbeTimeout = defaultProbeTimeout
	}
	if c.FFmpeg.ExtractTimeout == 0 {
		c.FFmpeg.ExtractTimeout = defaultExtractTimeout
	}
	if c.FFmpeg.BurnTimeout == 0 {
		c.FFmpeg.BurnTimeout = defaultBurnTimeout
	}
	if c.FFmpeg.EmbedTimeout == 0 {
		c.FFmpeg.EmbedTimeout = defaultEmbedTimeout
	}
	if c.FFmpeg.ThumbnailTimeout == 0 {
		c.FFmpeg.ThumbnailTimeout = defaultThumbnailTimeout
	}
}

func (c *Config) normalizeWhisper() {
	if strings.TrimSpace(c.Whisper.Binary) == "" {
		c.Whisper.Binary = defaultWhisperBinary
	}
	if strings.TrimSpace(c.Whisper.Model) == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Device = strings.ToLower(strings.TrimSpace(c.Whisper.Device))
	if c.Whisper.Device == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	if c.Whisper.Timeout == 0 {
		c.Whisper.Timeout = defaultWhisperTimeout
	}
}

func (c *Config) normalizeTranscriptCache() error {
	if strings.TrimSpace(c.TranscriptCache.Path) == "" {
		c.TranscriptCache.Path = defaultCachePath
	}
	var err error
	if c.TranscriptCache.Path, err = expandPath(c.TranscriptCache.Path); err != nil {
		return fmt.Errorf("transcript_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxConcurrentTranscriptions == 0 {
		c.Workflow.MaxConcurrentTranscriptions = 1
	}
	c.Workflow.DefaultOutputFormat = strings.ToLower(strings.TrimSpace(c.Workflow.DefaultOutputFormat))
	if c.Workflow.DefaultOutputFormat == "" {
		c.Workflow.DefaultOutputFormat = defaultOutputFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
