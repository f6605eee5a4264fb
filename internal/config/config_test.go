package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captiond/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantUploads := filepath.Join(tempHome, ".local", "share", "captiond", "uploads")
	if cfg.Paths.UploadDir != wantUploads {
		t.Fatalf("unexpected upload dir: got %q want %q", cfg.Paths.UploadDir, wantUploads)
	}
	if cfg.TranscriptCache.Path != filepath.Join(tempHome, ".cache", "captiond", "transcripts.db") {
		t.Fatalf("unexpected cache path: %q", cfg.TranscriptCache.Path)
	}
	if cfg.FFmpeg.Binary != "ffmpeg" || cfg.FFmpeg.ProbeBinary != "ffprobe" {
		t.Fatalf("unexpected ffmpeg binaries: %+v", cfg.FFmpeg)
	}
	if cfg.FFmpeg.BurnTimeout != 3600 {
		t.Fatalf("unexpected burn timeout: %d", cfg.FFmpeg.BurnTimeout)
	}
	if cfg.Workflow.MaxConcurrentTranscriptions != 1 {
		t.Fatalf("unexpected concurrency default: %d", cfg.Workflow.MaxConcurrentTranscriptions)
	}
	if cfg.Workflow.DefaultOutputFormat != "srt" {
		t.Fatalf("unexpected default output format: %q", cfg.Workflow.DefaultOutputFormat)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "captiond.toml")
	content := strings.Join([]string{
		"[paths]",
		`output_dir = "~/media/subs"`,
		"[whisper]",
		`device = "CUDA"`,
		`model = "large-v3"`,
		"[workflow]",
		"max_concurrent_transcriptions = 4",
		`default_output_format = "VTT"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "media", "subs") {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
	if cfg.Whisper.Device != "cuda" || cfg.Whisper.Model != "large-v3" {
		t.Fatalf("whisper settings not applied: %+v", cfg.Whisper)
	}
	if cfg.Workflow.MaxConcurrentTranscriptions != 4 {
		t.Fatalf("concurrency not applied: %d", cfg.Workflow.MaxConcurrentTranscriptions)
	}
	if cfg.Workflow.DefaultOutputFormat != "vtt" {
		t.Fatalf("output format not lowercased: %q", cfg.Workflow.DefaultOutputFormat)
	}
	// Sections absent from the file keep their defaults.
	if cfg.FFmpeg.ExtractTimeout != 600 {
		t.Fatalf("ffmpeg defaults lost: %+v", cfg.FFmpeg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := map[string]string{
		"bad device":  "[whisper]\ndevice = \"tpu\"\n",
		"bad format":  "[workflow]\ndefault_output_format = \"pdf\"\n",
		"bad level":   "[logging]\nlevel = \"loud\"\n",
		"bad timeout": "[ffmpeg]\nprobe_timeout = -1\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "captiond.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.OutputDir, cfg.Paths.TempDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %q not created: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Dir(cfg.TranscriptCache.Path)); err != nil {
		t.Fatalf("cache directory not created: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config", "captiond.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Whisper.Model != config.Default().Whisper.Model {
		t.Fatalf("sample diverges from defaults: %+v", cfg.Whisper)
	}
}
