package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"captiond/internal/config"
	"captiond/internal/jobs"
	"captiond/internal/logging"
	"captiond/internal/media/ffmpeg"
	"captiond/internal/pipeline"
	"captiond/internal/services/whisper"
	"captiond/internal/styles"
	"captiond/internal/transcriptcache"
)

// serviceContext bundles the wired collaborators for one invocation. It is
// built explicitly here; nothing lives in package-level state.
type serviceContext struct {
	cfg          *config.Config
	logger       *slog.Logger
	registry     *jobs.Registry
	orchestrator *pipeline.Orchestrator
	cache        *transcriptcache.Cache
}

func buildServices(cfg *config.Config) (*serviceContext, error) {
	logger, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: filepath.Join(cfg.Paths.LogDir, "captiond.log"),
	})
	if err != nil {
		return nil, err
	}

	resolver, err := styles.Load(cfg.Paths.StylePresetsPath)
	if err != nil {
		return nil, err
	}

	var cache *transcriptcache.Cache
	var pipelineCache pipeline.TranscriptCache
	if cfg.TranscriptCache.Enabled {
		cache, err = transcriptcache.Open(cfg.TranscriptCache.Path)
		if err != nil {
			return nil, fmt.Errorf("open transcript cache: %w", err)
		}
		pipelineCache = cache
	}

	toolkit := ffmpeg.New(cfg.FFmpeg, logger)
	engine := whisper.New(cfg.Whisper, logger)
	registry := jobs.NewRegistry(toolkit, logger)
	orchestrator := pipeline.New(cfg, registry, engine, toolkit, resolver, pipelineCache, logger)

	return &serviceContext{
		cfg:          cfg,
		logger:       logger,
		registry:     registry,
		orchestrator: orchestrator,
		cache:        cache,
	}, nil
}

func (s *serviceContext) close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}
