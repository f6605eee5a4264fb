package jobs

import (
	"fmt"
	"sync"
	"time"

	"captiond/internal/services"
)

// Job is the transcription job aggregate root. The identity and request
// fields never change after creation; pipeline state is mutated through the
// methods below, which enforce the state machine and progress invariants.
type Job struct {
	ID              string
	Filename        string
	FilePath        string
	FileSizeBytes   int64
	DurationSeconds float64
	Config          TranscriptionConfig
	CreatedAt       time.Time

	mu                    sync.Mutex
	status                Status
	progress              float64
	detectedLanguage      string
	outputPath            string
	videoOutputPath       string
	errorMessage          string
	startedAt             *time.Time
	completedAt           *time.Time
	vramUsedMB            float64
	processingTimeSeconds float64
}

// Snapshot is a point-in-time copy of a job's full state, safe to hand to
// callers without further locking.
type Snapshot struct {
	ID                    string
	Filename              string
	FilePath              string
	FileSizeBytes         int64
	DurationSeconds       float64
	Config                TranscriptionConfig
	Status                Status
	Progress              float64
	DetectedLanguage      string
	OutputPath            string
	VideoOutputPath       string
	ErrorMessage          string
	CreatedAt             time.Time
	StartedAt             *time.Time
	CompletedAt           *time.Time
	VRAMUsedMB            float64
	ProcessingTimeSeconds float64
}

func newJob(id, filename, filePath string, sizeBytes int64, duration float64, cfg TranscriptionConfig) *Job {
	return &Job{
		ID:              id,
		Filename:        filename,
		FilePath:        filePath,
		FileSizeBytes:   sizeBytes,
		DurationSeconds: duration,
		Config:          cfg,
		CreatedAt:       time.Now().UTC(),
		status:          StatusPending,
	}
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns the current progress percentage.
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// SetStatus moves the job along the state machine. Terminal jobs and
// illegal edges are rejected. Entering processing records started_at;
// entering a terminal state records completed_at.
func (j *Job) SetStatus(next Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.setStatusLocked(next)
}

func (j *Job) setStatusLocked(next Status) error {
	if j.status.IsTerminal() {
		return fmt.Errorf("%w: job %s is %s and cannot change status", services.ErrValidation, j.ID, j.status)
	}
	if !j.status.CanTransition(next) {
		return fmt.Errorf("%w: job %s cannot move from %s to %s", services.ErrValidation, j.ID, j.status, next)
	}
	j.status = next
	now := time.Now().UTC()
	if next == StatusProcessing && j.startedAt == nil {
		j.startedAt = &now
	}
	if next.IsTerminal() {
		j.completedAt = &now
	}
	return nil
}

// SetProgress advances progress. Values are clamped to [0,100]; regressions
// within a run are ignored rather than applied. Terminal jobs reject the
// update.
func (j *Job) SetProgress(value float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() {
		return fmt.Errorf("%w: job %s is %s and cannot change progress", services.ErrValidation, j.ID, j.status)
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	if value > j.progress {
		j.progress = value
	}
	return nil
}

// Fail marks the job failed, capturing the error message verbatim. The
// transition and the message land in one critical section so no reader can
// observe a failed job without its message.
func (j *Job) Fail(message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.setStatusLocked(StatusFailed); err != nil {
		return err
	}
	j.errorMessage = message
	return nil
}

// RecordTranscription stores the engine-reported results.
func (j *Job) RecordTranscription(detectedLanguage string, processingSeconds, vramMB float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.detectedLanguage = detectedLanguage
	j.processingTimeSeconds = processingSeconds
	j.vramUsedMB = vramMB
}

// SetOutputPath records the rendered subtitle artifact.
func (j *Job) SetOutputPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputPath = path
}

// SetVideoOutputPath records the burned-in video artifact.
func (j *Job) SetVideoOutputPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.videoOutputPath = path
}

// FileSizeMB returns the input size in mebibytes.
func (j *Job) FileSizeMB() float64 {
	return float64(j.FileSizeBytes) / (1024 * 1024)
}

// ElapsedSeconds returns wall-clock time from start to completion, or to now
// for a still-running job. Zero before the job starts.
func (j *Job) ElapsedSeconds() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.startedAt == nil {
		return 0
	}
	end := time.Now().UTC()
	if j.completedAt != nil {
		end = *j.completedAt
	}
	return end.Sub(*j.startedAt).Seconds()
}

// RealTimeFactor returns processing time divided by media duration. Zero
// when the duration is unknown.
func (j *Job) RealTimeFactor() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.DurationSeconds <= 0 {
		return 0
	}
	return j.processingTimeSeconds / j.DurationSeconds
}

// Snapshot copies the job's full state under the lock.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := Snapshot{
		ID:                    j.ID,
		Filename:              j.Filename,
		FilePath:              j.FilePath,
		FileSizeBytes:         j.FileSizeBytes,
		DurationSeconds:       j.DurationSeconds,
		Config:                j.Config,
		Status:                j.status,
		Progress:              j.progress,
		DetectedLanguage:      j.detectedLanguage,
		OutputPath:            j.outputPath,
		VideoOutputPath:       j.videoOutputPath,
		ErrorMessage:          j.errorMessage,
		CreatedAt:             j.CreatedAt,
		VRAMUsedMB:            j.vramUsedMB,
		ProcessingTimeSeconds: j.processingTimeSeconds,
	}
	if j.startedAt != nil {
		started := *j.startedAt
		snap.StartedAt = &started
	}
	if j.completedAt != nil {
		completed := *j.completedAt
		snap.CompletedAt = &completed
	}
	return snap
}
