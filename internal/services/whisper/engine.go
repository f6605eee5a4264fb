package whisper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"captiond/internal/config"
	"captiond/internal/logging"
	"captiond/internal/services"
	"captiond/internal/subtitle"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Request carries the per-job transcription parameters.
type Request struct {
	Language       string
	Task           string
	VADFilter      bool
	WordTimestamps bool
	SpeakerCount   *int
	OutputDir      string
}

// Fingerprint returns a stable digest of everything that influences the
// engine output for a given audio file. Used as part of the transcript
// cache key.
func (r Request) Fingerprint(cfg config.Whisper) string {
	speakers := ""
	if r.SpeakerCount != nil {
		speakers = strconv.Itoa(*r.SpeakerCount)
	}
	payload := strings.Join([]string{
		cfg.Model, cfg.Device, r.Language, r.Task,
		strconv.FormatBool(r.VADFilter), strconv.FormatBool(r.WordTimestamps), speakers,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Result is the engine output for one audio file.
type Result struct {
	Track                 *subtitle.Track
	DetectedLanguage      string
	ProcessingTimeSeconds float64
	VRAMUsedMB            float64
}

// Engine wraps the external transcription CLI.
type Engine struct {
	cfg    config.Whisper
	logger *slog.Logger
	run    commandRunner
}

// New constructs an Engine from configuration.
func New(cfg config.Whisper, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "whisper"),
		run:    runCombinedOutput,
	}
}

func runCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Transcribe runs the engine against an extracted audio file and parses the
// JSON it writes next to it.
func (e *Engine) Transcribe(ctx context.Context, audioPath string, req Request) (*Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("%w: audio path required", services.ErrValidation)
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.Timeout)*time.Second)
		defer cancel()
	}

	args := e.buildArgs(audioPath, outputDir, req)
	e.logger.Info("transcription start",
		logging.String("audio", audioPath),
		logging.String("model", e.cfg.Model),
		logging.String("device", e.cfg.Device))

	started := time.Now()
	output, err := e.run(ctx, e.cfg.Binary, args...)
	if err != nil {
		err = fmt.Errorf("%s: %w: %s", e.cfg.Binary, err, strings.TrimSpace(string(output)))
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, services.Classify("transcription", "whisper", err)
	}
	elapsed := time.Since(started).Seconds()

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	payload, err := loadPayload(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcription", "whisper", "read engine output", err)
	}

	track, skipped := payload.toTrack(req.Language)
	if skipped > 0 {
		e.logger.Warn("engine segments dropped", logging.Int("count", skipped))
	}

	result := &Result{
		Track:                 track,
		DetectedLanguage:      payload.Language,
		ProcessingTimeSeconds: elapsed,
	}
	if e.cfg.VRAMProbe && e.cfg.Device != "cpu" {
		result.VRAMUsedMB = e.probeVRAM(ctx)
	}

	e.logger.Info("transcription done",
		logging.String("language", result.DetectedLanguage),
		logging.Int("segments", len(track.Segments)),
		logging.Float64("elapsed_seconds", elapsed))
	return result, nil
}

func (e *Engine) buildArgs(audioPath, outputDir string, req Request) []string {
	args := []string{
		audioPath,
		"--model", e.cfg.Model,
		"--device", e.cfg.Device,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--verbose", "False",
	}
	if req.Task != "" {
		args = append(args, "--task", req.Task)
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if req.VADFilter {
		args = append(args, "--vad_filter", "True")
	}
	if req.WordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}
	if req.SpeakerCount != nil {
		args = append(args, "--num_speakers", strconv.Itoa(*req.SpeakerCount))
	}
	return args
}

// probeVRAM asks nvidia-smi for current GPU memory use. Best effort; a
// missing tool or parse failure yields zero.
func (e *Engine) probeVRAM(ctx context.Context) float64 {
	output, err := e.run(ctx, "nvidia-smi", "--query-gpu=memory.used", "--format=csv,noheader,nounits")
	if err != nil {
		e.logger.Debug("vram probe unavailable", logging.Error(err))
		return 0
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

type enginePayload struct {
	Language string          `json:"language"`
	Segments []engineSegment `json:"segments"`
}

type engineSegment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogProb float64 `json:"avg_logprob"`
}

func loadPayload(jsonPath string) (*enginePayload, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse engine json: %w", err)
	}
	return &payload, nil
}

// toTrack converts engine segments to the subtitle model, dropping entries
// that violate segment invariants. Confidence maps the average log
// probability onto [0,1].
func (p *enginePayload) toTrack(requestedLanguage string) (*subtitle.Track, int) {
	lang := p.Language
	if lang == "" {
		lang = requestedLanguage
	}
	track := subtitle.NewTrack(lang)

	skipped := 0
	for _, raw := range p.Segments {
		segment, err := subtitle.NewSegment(raw.Start, raw.End, strings.TrimSpace(raw.Text))
		if err != nil {
			skipped++
			continue
		}
		confidence := 1 + raw.AvgLogProb/4
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		if withConf, err := segment.WithConfidence(confidence); err == nil {
			segment = withConf
		}
		track.Append(segment)
	}
	return track, skipped
}
