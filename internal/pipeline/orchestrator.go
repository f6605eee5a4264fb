package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"captiond/internal/config"
	"captiond/internal/jobs"
	"captiond/internal/logging"
	"captiond/internal/media/ffprobe"
	"captiond/internal/services/whisper"
	"captiond/internal/styles"
	"captiond/internal/subtitle"
	"captiond/internal/transcriptcache"
)

// Progress milestones for the fixed stages. The engine stage occupies the
// gap between transcribe start and format completion.
const (
	progressExtracted      = 10
	progressTranscribing   = 30
	progressFormatted      = 80
	progressBurnInStarted  = 85
	progressEmbedded       = 88
	progressBurnInFinished = 95
	progressDone           = 100
)

// Engine is the transcription collaborator.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, req whisper.Request) (*whisper.Result, error)
}

// MediaToolkit is the ffmpeg collaborator.
type MediaToolkit interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath string, style subtitle.Style, videoCodec, outputPath string) error
	EmbedSubtitles(ctx context.Context, videoPath, subtitlePath, languageCode, outputPath string) error
}

// TranscriptCache is the optional result cache. A nil cache disables it.
type TranscriptCache interface {
	Get(ctx context.Context, audioDigest, fingerprint string) (transcriptcache.Entry, bool, error)
	Put(ctx context.Context, audioDigest, fingerprint string, entry transcriptcache.Entry) error
}

// Orchestrator runs job pipelines. All collaborators are injected; it holds
// no global state.
type Orchestrator struct {
	cfg      *config.Config
	registry *jobs.Registry
	engine   Engine
	toolkit  MediaToolkit
	styles   *styles.Resolver
	cache    TranscriptCache
	logger   *slog.Logger
	sem      chan struct{}
}

// New constructs an Orchestrator. The admission semaphore is sized from
// workflow.max_concurrent_transcriptions.
func New(cfg *config.Config, registry *jobs.Registry, engine Engine, toolkit MediaToolkit, resolver *styles.Resolver, cache TranscriptCache, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	slots := cfg.Workflow.MaxConcurrentTranscriptions
	if slots < 1 {
		slots = 1
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		engine:   engine,
		toolkit:  toolkit,
		styles:   resolver,
		cache:    cache,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		sem:      make(chan struct{}, slots),
	}
}

// Process runs the full pipeline for one queued job. On failure the job is
// marked failed with the error captured verbatim, and the error is returned
// to the caller. A job cancelled before or during the run returns nil; the
// cancellation already holds the outcome.
func (o *Orchestrator) Process(ctx context.Context, job *jobs.Job) (err error) {
	runCtx, err := o.registry.BindRun(ctx, job.ID)
	if err != nil {
		return err
	}
	defer o.registry.ReleaseRun(job.ID)

	logger := o.logger.With(logging.String(logging.FieldJobID, job.ID))

	// Jobs handed over straight from creation move through queued first.
	if job.Status() == jobs.StatusPending {
		_ = job.SetStatus(jobs.StatusQueued)
	}
	if err := job.SetStatus(jobs.StatusProcessing); err != nil {
		if job.Status() == jobs.StatusCancelled {
			return nil
		}
		return err
	}

	var tempFiles []string
	defer func() {
		if o.cfg.Workflow.KeepTempAudio {
			return
		}
		for _, path := range tempFiles {
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Warn("temp cleanup failed", logging.String("path", path), logging.Error(removeErr))
			}
		}
	}()

	fail := func(stageErr error) error {
		if job.Status() == jobs.StatusCancelled {
			logger.Info("job run stopped by cancellation")
			return nil
		}
		if failErr := job.Fail(stageErr.Error()); failErr != nil {
			logger.Warn("mark failed rejected", logging.Error(failErr))
		}
		logger.Error("job failed", logging.Error(stageErr))
		return stageErr
	}

	// Stage 1: probe the input and extract audio when it carries video.
	probe, err := o.toolkit.Probe(runCtx, job.FilePath)
	if err != nil {
		return fail(err)
	}
	audioPath := job.FilePath
	if probe.HasVideo() {
		audioPath = filepath.Join(o.cfg.Paths.TempDir, job.ID+".wav")
		if err := o.toolkit.ExtractAudio(runCtx, job.FilePath, audioPath); err != nil {
			return fail(err)
		}
		tempFiles = append(tempFiles, audioPath)
	}
	_ = job.SetProgress(progressExtracted)

	if err := checkpoint(runCtx); err != nil {
		return fail(err)
	}

	// Stage 2: transcribe, behind the admission semaphore.
	_ = job.SetProgress(progressTranscribing)
	result, err := o.transcribe(runCtx, job, audioPath)
	if err != nil {
		return fail(err)
	}
	job.RecordTranscription(result.DetectedLanguage, result.ProcessingTimeSeconds, result.VRAMUsedMB)
	logger.Info("transcription recorded",
		logging.String("language", result.DetectedLanguage),
		logging.Int("segments", len(result.Track.Segments)))

	if err := checkpoint(runCtx); err != nil {
		return fail(err)
	}

	// Stage 3: render the track to the requested format.
	outputPath, err := o.renderOutput(job, result.Track)
	if err != nil {
		return fail(err)
	}
	job.SetOutputPath(outputPath)
	_ = job.SetProgress(progressFormatted)

	if err := checkpoint(runCtx); err != nil {
		return fail(err)
	}

	// Stage 4: optional burn-in or soft-sub embed.
	if job.Config.BurnIn.Enabled {
		if err := o.burnIn(runCtx, job, result, outputPath, &tempFiles); err != nil {
			return fail(err)
		}
	} else if job.Config.EmbedSoftSubs && probe.HasVideo() {
		if err := o.embed(runCtx, job, result, outputPath, &tempFiles); err != nil {
			return fail(err)
		}
	}

	// Stage 5: finalize.
	_ = job.SetProgress(progressDone)
	if err := job.SetStatus(jobs.StatusCompleted); err != nil {
		return fail(err)
	}
	logger.Info("job completed",
		logging.Float64("real_time_factor", job.RealTimeFactor()),
		logging.String("output", outputPath))
	return nil
}

// transcribe consults the cache, then the engine. The semaphore is held for
// the engine call only.
func (o *Orchestrator) transcribe(ctx context.Context, job *jobs.Job, audioPath string) (*whisper.Result, error) {
	req := whisper.Request{
		Language:       job.Config.Language,
		Task:           string(job.Config.Task),
		VADFilter:      job.Config.VADFilter,
		WordTimestamps: job.Config.WordTimestamps,
		SpeakerCount:   job.Config.SpeakerCount,
		OutputDir:      o.cfg.Paths.TempDir,
	}

	var digest, fingerprint string
	if o.cache != nil {
		var err error
		digest, err = transcriptcache.AudioDigest(audioPath)
		if err == nil {
			fingerprint = req.Fingerprint(o.cfg.Whisper)
			if entry, ok, cacheErr := o.cache.Get(ctx, digest, fingerprint); cacheErr == nil && ok {
				o.logger.Info("transcript cache hit", logging.String(logging.FieldJobID, job.ID))
				return &whisper.Result{Track: entry.Track, DetectedLanguage: entry.Language}, nil
			}
		}
	}

	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-o.sem }()

	result, err := o.engine.Transcribe(ctx, audioPath, req)
	if err != nil {
		return nil, err
	}

	if o.cache != nil && digest != "" {
		entry := transcriptcache.Entry{Language: result.DetectedLanguage, Track: result.Track}
		if putErr := o.cache.Put(ctx, digest, fingerprint, entry); putErr != nil {
			o.logger.Warn("transcript cache store failed", logging.Error(putErr))
		}
	}
	return result, nil
}

// renderOutput writes the subtitle artifact at its deterministic path. When
// the track needs styling (ASS output or a later burn-in), the preset is
// resolved onto it first.
func (o *Orchestrator) renderOutput(job *jobs.Job, track *subtitle.Track) (string, error) {
	format := job.Config.OutputFormat
	if format == subtitle.FormatASS || job.Config.BurnIn.Enabled {
		style, err := o.resolveStyle(job)
		if err != nil {
			return "", err
		}
		track.Style = &style
	}
	outputPath := filepath.Join(o.cfg.Paths.OutputDir, job.ID+"."+string(format))
	if err := subtitle.WriteFile(track, format, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (o *Orchestrator) resolveStyle(job *jobs.Job) (subtitle.Style, error) {
	if o.styles == nil {
		return subtitle.DefaultStyle(), nil
	}
	return o.styles.Resolve(job.Config.BurnIn.StyleID, job.Config.BurnIn.StyleOverrides)
}

// burnIn composites the subtitles into a new video file.
func (o *Orchestrator) burnIn(ctx context.Context, job *jobs.Job, result *whisper.Result, outputPath string, tempFiles *[]string) error {
	if err := job.SetStatus(jobs.StatusPostProcessing); err != nil {
		return err
	}
	_ = job.SetProgress(progressBurnInStarted)

	style, err := o.resolveStyle(job)
	if err != nil {
		return err
	}
	subtitlePath, err := o.burnableSubtitle(job, result, outputPath, tempFiles)
	if err != nil {
		return err
	}

	videoPath := filepath.Join(o.cfg.Paths.OutputDir, job.ID+"_burned."+job.Config.BurnIn.Container)
	codec := codecForQuality(job.Config.BurnIn.Quality)
	if err := o.toolkit.BurnSubtitles(ctx, job.FilePath, subtitlePath, style, codec, videoPath); err != nil {
		return err
	}
	job.SetVideoOutputPath(videoPath)
	_ = job.SetProgress(progressBurnInFinished)
	return nil
}

// embed muxes the subtitles into the container as a soft stream.
func (o *Orchestrator) embed(ctx context.Context, job *jobs.Job, result *whisper.Result, outputPath string, tempFiles *[]string) error {
	subtitlePath, err := o.burnableSubtitle(job, result, outputPath, tempFiles)
	if err != nil {
		return err
	}
	container := filepath.Ext(job.Filename)
	if container == "" {
		container = ".mp4"
	}
	videoPath := filepath.Join(o.cfg.Paths.OutputDir, job.ID+"_embedded"+container)
	lang := result.DetectedLanguage
	if lang == "" {
		lang = job.Config.Language
	}
	if err := o.toolkit.EmbedSubtitles(ctx, job.FilePath, subtitlePath, lang, videoPath); err != nil {
		return err
	}
	job.SetVideoOutputPath(videoPath)
	_ = job.SetProgress(progressEmbedded)
	return nil
}

// burnableSubtitle returns a subtitle file ffmpeg can consume. TXT and JSON
// outputs get a throwaway SRT rendering.
func (o *Orchestrator) burnableSubtitle(job *jobs.Job, result *whisper.Result, outputPath string, tempFiles *[]string) (string, error) {
	switch job.Config.OutputFormat {
	case subtitle.FormatSRT, subtitle.FormatVTT, subtitle.FormatASS:
		return outputPath, nil
	}
	sidecar := filepath.Join(o.cfg.Paths.TempDir, job.ID+".srt")
	if err := subtitle.WriteFile(result.Track, subtitle.FormatSRT, sidecar); err != nil {
		return "", err
	}
	*tempFiles = append(*tempFiles, sidecar)
	return sidecar, nil
}

func codecForQuality(quality jobs.Quality) string {
	if quality == jobs.QualityHigh {
		return "libx265"
	}
	return "libx264"
}

func checkpoint(ctx context.Context) error {
	return ctx.Err()
}
