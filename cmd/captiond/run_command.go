package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"captiond/internal/jobs"
	"captiond/internal/subtitle"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		languageFlag  string
		taskFlag      string
		formatFlag    string
		vadFlag       bool
		wordTimesFlag bool
		speakersFlag  int
		embedFlag     bool
		burnFlag      bool
		burnStyle     string
		burnContainer string
		burnQuality   string
	)

	cmd := &cobra.Command{
		Use:   "run <file> [file...]",
		Short: "Transcribe media files into subtitles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			// One instance at a time; concurrent runs would race on the
			// output directory and the GPU.
			lock := flock.New(cfg.Paths.LockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instance lock: %w", err)
			}
			if !locked {
				return errors.New("another captiond instance is already running")
			}
			defer func() { _ = lock.Unlock() }()

			services, err := buildServices(cfg)
			if err != nil {
				return err
			}
			defer services.close()

			format := cfg.Workflow.DefaultOutputFormat
			if formatFlag != "" {
				format = formatFlag
			}
			parsedFormat, ok := subtitle.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown output format %q", format)
			}

			jobConfig := jobs.TranscriptionConfig{
				Language:       languageFlag,
				Task:           jobs.Task(taskFlag),
				OutputFormat:   parsedFormat,
				VADFilter:      vadFlag,
				WordTimestamps: wordTimesFlag,
				EmbedSoftSubs:  embedFlag,
				BurnIn: jobs.BurnInOptions{
					Enabled:   burnFlag,
					StyleID:   burnStyle,
					Container: burnContainer,
					Quality:   jobs.Quality(burnQuality),
				},
			}
			if speakersFlag > 0 {
				speakers := speakersFlag
				jobConfig.SpeakerCount = &speakers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			created := make([]*jobs.Job, 0, len(args))
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("input %s: %w", arg, err)
				}
				job, err := services.registry.Create(ctx, filepath.Base(path), path, info.Size(), jobConfig)
				if err != nil {
					return err
				}
				created = append(created, job)
			}

			var wg sync.WaitGroup
			for _, job := range created {
				wg.Add(1)
				go func(job *jobs.Job) {
					defer wg.Done()
					_ = services.orchestrator.Process(ctx, job)
				}(job)
			}
			wg.Wait()

			printJobSummary(cmd, created)

			for _, job := range created {
				if job.Status() == jobs.StatusFailed {
					return errors.New("one or more jobs failed")
				}
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Source language (auto-detect when empty)")
	cmd.Flags().StringVar(&taskFlag, "task", "transcribe", "Engine task: transcribe or translate")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: srt, vtt, ass, txt, json")
	cmd.Flags().BoolVar(&vadFlag, "vad", false, "Filter non-speech audio before transcription")
	cmd.Flags().BoolVar(&wordTimesFlag, "word-timestamps", false, "Request word-level timestamps")
	cmd.Flags().IntVar(&speakersFlag, "speakers", 0, "Expected speaker count")
	cmd.Flags().BoolVar(&embedFlag, "embed", false, "Mux subtitles into the container as a soft stream")
	cmd.Flags().BoolVar(&burnFlag, "burn-in", false, "Composite subtitles into the video pixels")
	cmd.Flags().StringVar(&burnStyle, "burn-style", "default", "Style preset for burn-in")
	cmd.Flags().StringVar(&burnContainer, "burn-container", "mp4", "Burned video container: mp4, mkv, webm")
	cmd.Flags().StringVar(&burnQuality, "burn-quality", "medium", "Burn-in quality tier: low, medium, high")

	return cmd
}

func printJobSummary(cmd *cobra.Command, created []*jobs.Job) {
	rows := make([][]string, 0, len(created))
	for _, job := range created {
		snap := job.Snapshot()
		detail := snap.OutputPath
		if snap.Status == jobs.StatusFailed {
			detail = snap.ErrorMessage
		}
		if snap.VideoOutputPath != "" {
			detail += " + " + filepath.Base(snap.VideoOutputPath)
		}
		rows = append(rows, []string{
			shortID(snap.ID),
			snap.Filename,
			string(snap.Status),
			snap.DetectedLanguage,
			fmt.Sprintf("%.0f%%", snap.Progress),
			fmt.Sprintf("%.1fs", snap.ProcessingTimeSeconds),
			detail,
		})
	}
	cmd.Println(renderTable(
		[]string{"ID", "File", "Status", "Lang", "Progress", "Engine", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
