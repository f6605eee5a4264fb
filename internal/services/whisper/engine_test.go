package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captiond/internal/config"
	"captiond/internal/services"
)

func testEngine(t *testing.T, payload string, runErr error) (*Engine, *[][]string) {
	t.Helper()
	calls := &[][]string{}
	engine := New(config.Default().Whisper, nil)
	engine.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, append([]string{name}, args...))
		if name == "nvidia-smi" {
			return []byte("1523\n"), nil
		}
		if runErr != nil {
			return []byte("engine stderr"), runErr
		}
		// The real CLI writes <base>.json into --output_dir.
		audio := args[0]
		var outputDir string
		for i, arg := range args {
			if arg == "--output_dir" && i+1 < len(args) {
				outputDir = args[i+1]
			}
		}
		base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
		if err := os.WriteFile(filepath.Join(outputDir, base+".json"), []byte(payload), 0o644); err != nil {
			t.Fatalf("write payload: %v", err)
		}
		return nil, nil
	}
	return engine, calls
}

const samplePayload = `{
	"language": "en",
	"segments": [
		{"id": 0, "start": 0.0, "end": 2.5, "text": " Hello world ", "avg_logprob": -0.4},
		{"id": 1, "start": 2.5, "end": 2.0, "text": "inverted", "avg_logprob": -0.2},
		{"id": 2, "start": 3.0, "end": 5.0, "text": "Second line", "avg_logprob": -8.0}
	]
}`

func TestTranscribeBuildsTrack(t *testing.T) {
	engine, calls := testEngine(t, samplePayload, nil)
	dir := t.TempDir()
	audio := filepath.Join(dir, "job.wav")

	result, err := engine.Transcribe(context.Background(), audio, Request{Language: "en", Task: "transcribe", VADFilter: true, OutputDir: dir})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.DetectedLanguage != "en" {
		t.Fatalf("detected language = %q", result.DetectedLanguage)
	}
	// The inverted segment is dropped; two survive with re-assigned indices.
	if len(result.Track.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(result.Track.Segments))
	}
	if result.Track.Segments[0].Text != "Hello world" {
		t.Fatalf("text not trimmed: %q", result.Track.Segments[0].Text)
	}
	first := result.Track.Segments[0].Confidence
	if first == nil || *first != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", first)
	}
	// avg_logprob -8 maps below zero and clamps.
	second := result.Track.Segments[1].Confidence
	if second == nil || *second != 0 {
		t.Fatalf("confidence = %v, want 0", second)
	}
	if result.ProcessingTimeSeconds < 0 {
		t.Fatalf("processing time = %v", result.ProcessingTimeSeconds)
	}

	engineArgs := (*calls)[0]
	joined := strings.Join(engineArgs, " ")
	if !strings.Contains(joined, "--vad_filter True") || !strings.Contains(joined, "--language en") {
		t.Fatalf("engine args wrong: %v", engineArgs)
	}
}

func TestTranscribeProbesVRAM(t *testing.T) {
	engine, calls := testEngine(t, samplePayload, nil)
	engine.cfg.Device = "cuda"
	dir := t.TempDir()

	result, err := engine.Transcribe(context.Background(), filepath.Join(dir, "a.wav"), Request{OutputDir: dir})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.VRAMUsedMB != 1523 {
		t.Fatalf("vram = %v", result.VRAMUsedMB)
	}
	if len(*calls) != 2 || (*calls)[1][0] != "nvidia-smi" {
		t.Fatalf("expected nvidia-smi call, got %v", *calls)
	}
}

func TestTranscribeSkipsVRAMProbeOnCPU(t *testing.T) {
	engine, calls := testEngine(t, samplePayload, nil)
	engine.cfg.Device = "cpu"
	dir := t.TempDir()

	result, err := engine.Transcribe(context.Background(), filepath.Join(dir, "a.wav"), Request{OutputDir: dir})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.VRAMUsedMB != 0 || len(*calls) != 1 {
		t.Fatalf("unexpected vram probe: %v %v", result.VRAMUsedMB, *calls)
	}
}

func TestTranscribeClassifiesEngineFailure(t *testing.T) {
	engine, _ := testEngine(t, "", errors.New("exit status 2"))
	dir := t.TempDir()

	_, err := engine.Transcribe(context.Background(), filepath.Join(dir, "a.wav"), Request{OutputDir: dir})
	if !services.IsExternalTool(err) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine stderr") {
		t.Fatalf("stderr not surfaced: %v", err)
	}
}

func TestTranscribeRejectsEmptyPath(t *testing.T) {
	engine, _ := testEngine(t, samplePayload, nil)
	if _, err := engine.Transcribe(context.Background(), "  ", Request{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestFingerprint(t *testing.T) {
	cfg := config.Default().Whisper
	base := Request{Language: "en", Task: "transcribe"}
	same := Request{Language: "en", Task: "transcribe"}
	if base.Fingerprint(cfg) != same.Fingerprint(cfg) {
		t.Fatal("identical requests produced different fingerprints")
	}
	translated := Request{Language: "en", Task: "translate"}
	if base.Fingerprint(cfg) == translated.Fingerprint(cfg) {
		t.Fatal("different tasks share a fingerprint")
	}
	otherModel := cfg
	otherModel.Model = "large-v3"
	if base.Fingerprint(cfg) == base.Fingerprint(otherModel) {
		t.Fatal("different models share a fingerprint")
	}
}
