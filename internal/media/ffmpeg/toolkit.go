package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"captiond/internal/config"
	"captiond/internal/logging"
	"captiond/internal/media/ffprobe"
	"captiond/internal/services"
	"captiond/internal/subtitle"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

type inspectFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Toolkit executes media operations through the configured ffmpeg and
// ffprobe binaries.
type Toolkit struct {
	cfg     config.FFmpeg
	logger  *slog.Logger
	run     commandRunner
	inspect inspectFunc
}

// New constructs a Toolkit using the configured binaries.
func New(cfg config.FFmpeg, logger *slog.Logger) *Toolkit {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Toolkit{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "ffmpeg"),
		run:     runCombinedOutput,
		inspect: ffprobe.Inspect,
	}
}

func runCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Probe inspects the input container.
func (t *Toolkit) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	ctx, cancel := t.withTimeout(ctx, t.cfg.ProbeTimeout)
	defer cancel()
	result, err := t.inspect(ctx, t.cfg.ProbeBinary, path)
	if err != nil {
		return ffprobe.Result{}, services.Classify("media", "probe", joinContextErr(ctx, err))
	}
	return result, nil
}

// Duration returns the media duration in seconds. It satisfies the job
// registry's prober interface.
func (t *Toolkit) Duration(ctx context.Context, path string) (float64, error) {
	result, err := t.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return result.DurationSeconds(), nil
}

// ExtractAudio writes a mono 16 kHz PCM WAV stream suitable for the
// transcription engine.
func (t *Toolkit) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	}
	return t.execute(ctx, "extract_audio", t.cfg.ExtractTimeout, args)
}

// BurnSubtitles composites the subtitle file into the video pixels using
// the given encoder. ASS inputs carry their own styling; other formats get
// a force_style built from the resolved style.
func (t *Toolkit) BurnSubtitles(ctx context.Context, videoPath, subtitlePath string, style subtitle.Style, videoCodec, outputPath string) error {
	var filter string
	if strings.EqualFold(filepath.Ext(subtitlePath), ".ass") {
		filter = "ass=" + escapeFilterPath(subtitlePath)
	} else {
		filter = fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(subtitlePath), forceStyle(style))
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", filter,
		"-c:v", videoCodec,
		"-c:a", "copy",
		outputPath,
	}
	return t.execute(ctx, "burn_subtitles", t.cfg.BurnTimeout, args)
}

// EmbedSubtitles muxes the subtitle file into the container as a soft
// subtitle stream without re-encoding.
func (t *Toolkit) EmbedSubtitles(ctx context.Context, videoPath, subtitlePath, languageCode, outputPath string) error {
	subtitleCodec := "mov_text"
	if ext := strings.ToLower(filepath.Ext(outputPath)); ext == ".mkv" || ext == ".webm" {
		subtitleCodec = "srt"
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-i", subtitlePath,
		"-c", "copy",
		"-c:s", subtitleCodec,
	}
	if languageCode != "" {
		args = append(args, "-metadata:s:s:0", "language="+languageCode)
	}
	args = append(args, outputPath)
	return t.execute(ctx, "embed_subtitles", t.cfg.EmbedTimeout, args)
}

// Thumbnail grabs a single frame at the given offset.
func (t *Toolkit) Thumbnail(ctx context.Context, videoPath string, atSeconds float64, outputPath string) error {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	}
	return t.execute(ctx, "thumbnail", t.cfg.ThumbnailTimeout, args)
}

func (t *Toolkit) execute(ctx context.Context, operation string, timeoutSeconds int, args []string) error {
	ctx, cancel := t.withTimeout(ctx, timeoutSeconds)
	defer cancel()

	started := time.Now()
	t.logger.Debug("ffmpeg start", logging.String("operation", operation))
	output, err := t.run(ctx, t.cfg.Binary, args...)
	if err != nil {
		err = fmt.Errorf("%s: %w: %s", t.cfg.Binary, err, strings.TrimSpace(string(output)))
		return services.Classify("media", operation, joinContextErr(ctx, err))
	}
	t.logger.Debug("ffmpeg done",
		logging.String("operation", operation),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (t *Toolkit) withTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// joinContextErr prefers the context's deadline error so timeouts classify
// correctly even when the tool reports a generic kill.
func joinContextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// escapeFilterPath escapes characters that are special inside an ffmpeg
// filter graph argument.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`)
	return replacer.Replace(path)
}
