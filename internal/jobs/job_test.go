package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"captiond/internal/jobs"
	"captiond/internal/services"
	"captiond/internal/subtitle"
)

type fixedProber struct {
	duration float64
	err      error
}

func (p fixedProber) Duration(ctx context.Context, path string) (float64, error) {
	return p.duration, p.err
}

func createJob(t *testing.T, cfg jobs.TranscriptionConfig) *jobs.Job {
	t.Helper()
	registry := jobs.NewRegistry(fixedProber{duration: 120}, nil)
	job, err := registry.Create(context.Background(), "clip.mp4", "/tmp/clip.mp4", 2048, cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return job
}

func TestStatusStateMachine(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})
	if job.Status() != jobs.StatusPending {
		t.Fatalf("new job status = %s", job.Status())
	}

	for _, next := range []jobs.Status{jobs.StatusUploading, jobs.StatusQueued, jobs.StatusProcessing, jobs.StatusPostProcessing, jobs.StatusCompleted} {
		if err := job.SetStatus(next); err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}

	snap := job.Snapshot()
	if snap.StartedAt == nil || snap.CompletedAt == nil {
		t.Fatalf("expected timestamps set: %+v", snap)
	}
	if err := job.SetStatus(jobs.StatusQueued); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("terminal job accepted transition: %v", err)
	}
}

func TestStatusRejectsIllegalEdges(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})
	if err := job.SetStatus(jobs.StatusCompleted); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("pending to completed should fail: %v", err)
	}
	if err := job.SetStatus(jobs.StatusPostProcessing); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("pending to post_processing should fail: %v", err)
	}
	// Failure is reachable from any non-terminal state.
	if err := job.SetStatus(jobs.StatusFailed); err != nil {
		t.Fatalf("pending to failed should succeed: %v", err)
	}
}

func TestCancellableStatuses(t *testing.T) {
	cancellable := map[jobs.Status]bool{
		jobs.StatusPending:        true,
		jobs.StatusUploading:      false,
		jobs.StatusQueued:         true,
		jobs.StatusProcessing:     true,
		jobs.StatusPostProcessing: false,
		jobs.StatusCompleted:      false,
		jobs.StatusFailed:         false,
		jobs.StatusCancelled:      false,
	}
	for status, want := range cancellable {
		if got := status.CanCancel(); got != want {
			t.Errorf("%s.CanCancel() = %v, want %v", status, got, want)
		}
	}
}

func TestProgressMonotonicAndClamped(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})
	if err := job.SetProgress(30); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	if err := job.SetProgress(10); err != nil {
		t.Fatalf("regression should be ignored, not rejected: %v", err)
	}
	if job.Progress() != 30 {
		t.Fatalf("progress regressed to %v", job.Progress())
	}
	if err := job.SetProgress(150); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	if job.Progress() != 100 {
		t.Fatalf("progress not clamped: %v", job.Progress())
	}

	if err := job.Fail("boom"); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	if err := job.SetProgress(100); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("terminal job accepted progress: %v", err)
	}
}

func TestFailCapturesMessageVerbatim(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})
	message := "external tool error: ffmpeg: exit status 1"
	if err := job.Fail(message); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	snap := job.Snapshot()
	if snap.ErrorMessage != message {
		t.Fatalf("error message = %q, want %q", snap.ErrorMessage, message)
	}
	if snap.Status != jobs.StatusFailed || snap.CompletedAt == nil {
		t.Fatalf("unexpected terminal state: %+v", snap)
	}
}

func TestFailIsAtomicUnderConcurrentSnapshots(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := job.Snapshot()
				if snap.Status == jobs.StatusFailed && snap.ErrorMessage == "" {
					t.Error("observed failed job without its error message")
					return
				}
			}
		}()
	}

	if err := job.Fail("decode error"); err != nil {
		t.Fatalf("Fail returned error: %v", err)
	}
	close(done)
	wg.Wait()
}

func TestDerivedMetrics(t *testing.T) {
	job := createJob(t, jobs.TranscriptionConfig{})
	if got := job.FileSizeMB(); got != 2048.0/(1024*1024) {
		t.Fatalf("FileSizeMB = %v", got)
	}
	if job.ElapsedSeconds() != 0 {
		t.Fatalf("elapsed before start should be 0, got %v", job.ElapsedSeconds())
	}
	job.RecordTranscription("en", 60, 1500)
	if got := job.RealTimeFactor(); got != 0.5 {
		t.Fatalf("RealTimeFactor = %v, want 0.5", got)
	}
	snap := job.Snapshot()
	if snap.DetectedLanguage != "en" || snap.VRAMUsedMB != 1500 {
		t.Fatalf("transcription results not recorded: %+v", snap)
	}
}

func TestConfigNormalizeDefaultsAndValidation(t *testing.T) {
	cfg := jobs.TranscriptionConfig{Language: "en-US", BurnIn: jobs.BurnInOptions{Enabled: true}}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.Language != "en" || cfg.Task != jobs.TaskTranscribe || cfg.OutputFormat != subtitle.FormatSRT {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.BurnIn.StyleID != "default" || cfg.BurnIn.Container != "mp4" || cfg.BurnIn.Quality != jobs.QualityMedium {
		t.Fatalf("burn-in defaults not applied: %+v", cfg.BurnIn)
	}

	withFormat := jobs.TranscriptionConfig{OutputFormat: subtitle.FormatVTT}
	if err := withFormat.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if withFormat.OutputFormat != subtitle.FormatVTT {
		t.Fatalf("output format changed to %q", withFormat.OutputFormat)
	}

	bad := jobs.TranscriptionConfig{Task: "summarize"}
	if err := bad.Normalize(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for task, got %v", err)
	}
	bad = jobs.TranscriptionConfig{OutputFormat: "sub"}
	if err := bad.Normalize(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for output format, got %v", err)
	}
	negative := -1
	bad = jobs.TranscriptionConfig{SpeakerCount: &negative}
	if err := bad.Normalize(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for speaker count, got %v", err)
	}
	bad = jobs.TranscriptionConfig{BurnIn: jobs.BurnInOptions{Enabled: true, Container: "avi"}}
	if err := bad.Normalize(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for container, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := jobs.ParseStatus(" Processing "); !ok || status != jobs.StatusProcessing {
		t.Fatalf("ParseStatus = %v %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("sleeping"); ok {
		t.Fatal("unknown status accepted")
	}
}
