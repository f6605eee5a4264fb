package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	UploadDir        string `toml:"upload_dir"`
	OutputDir        string `toml:"output_dir"`
	TempDir          string `toml:"temp_dir"`
	LogDir           string `toml:"log_dir"`
	StylePresetsPath string `toml:"style_presets_path"`
	LockPath         string `toml:"lock_path"`
}

// FFmpeg contains binary names and per-operation timeouts in seconds.
type FFmpeg struct {
	Binary           string `toml:"binary"`
	ProbeBinary      string `toml:"probe_binary"`
	ProbeTimeout     int    `toml:"probe_timeout"`
	ExtractTimeout   int    `toml:"extract_timeout"`
	BurnTimeout      int    `toml:"burn_timeout"`
	EmbedTimeout     int    `toml:"embed_timeout"`
	ThumbnailTimeout int    `toml:"thumbnail_timeout"`
}

// Whisper contains transcription engine configuration.
type Whisper struct {
	Binary    string `toml:"binary"`
	Model     string `toml:"model"`
	Device    string `toml:"device"`
	Timeout   int    `toml:"timeout"`
	VRAMProbe bool   `toml:"vram_probe"`
}

// TranscriptCache contains configuration for the on-disk result cache.
type TranscriptCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Workflow contains pipeline concurrency and output defaults.
type Workflow struct {
	MaxConcurrentTranscriptions int    `toml:"max_concurrent_transcriptions"`
	DefaultOutputFormat         string `toml:"default_output_format"`
	KeepTempAudio               bool   `toml:"keep_temp_audio"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for captiond.
//
// Configuration sections by subsystem:
//   - Paths: working directories, style presets file, instance lock
//   - FFmpeg: media toolkit binaries and operation timeouts
//   - Whisper: transcription engine binary, model, device
//   - TranscriptCache: cached engine results keyed by audio content
//   - Workflow: transcription concurrency and output defaults
//   - Logging: log format and level
type Config struct {
	Paths           Paths           `toml:"paths"`
	FFmpeg          FFmpeg          `toml:"ffmpeg"`
	Whisper         Whisper         `toml:"whisper"`
	TranscriptCache TranscriptCache `toml:"transcript_cache"`
	Workflow        Workflow        `toml:"workflow"`
	Logging         Logging         `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/captiond/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("captiond.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for service operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.OutputDir, c.Paths.TempDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.TranscriptCache.Enabled && strings.TrimSpace(c.TranscriptCache.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.TranscriptCache.Path), 0o755); err != nil {
			return fmt.Errorf("create transcript cache directory: %w", err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
