package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"captiond/internal/logging"
	"captiond/internal/services"
)

// DurationProber reports the media duration of an input file. Probe failures
// are non-fatal at creation time; the duration simply stays zero.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Registry is the in-memory job store. Its mutex guards the maps only; job
// state mutation goes through the Job's own methods and file I/O happens
// outside the lock.
type Registry struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc

	prober DurationProber
	logger *slog.Logger
}

// NewRegistry constructs an empty registry. prober may be nil when duration
// probing is unavailable.
func NewRegistry(prober DurationProber, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
		prober:  prober,
		logger:  logging.NewComponentLogger(logger, "registry"),
	}
}

// Create registers a new pending job for an already-saved upload. The config
// is normalized and validated; the media duration is probed best-effort.
func (r *Registry) Create(ctx context.Context, filename, filePath string, sizeBytes int64, cfg TranscriptionConfig) (*Job, error) {
	if filename == "" || filePath == "" {
		return nil, fmt.Errorf("%w: filename and file path are required", services.ErrValidation)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	var duration float64
	if r.prober != nil {
		probed, err := r.prober.Duration(ctx, filePath)
		if err != nil {
			r.logger.Warn("duration probe failed", logging.String("file", filePath), logging.Error(err))
		} else {
			duration = probed
		}
	}

	job := newJob(uuid.NewString(), filename, filePath, sizeBytes, duration, cfg)

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	r.logger.Info("job created",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("filename", filename),
		logging.Float64("duration_seconds", duration))
	return job, nil
}

// Get returns the job with the given id.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.Lock()
	job, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: job %s", services.ErrNotFound, id)
	}
	return job, nil
}

// List returns job snapshots sorted by creation time, newest first. status
// filters when non-empty; offset and limit paginate (limit <= 0 means all).
func (r *Registry) List(status Status, limit, offset int) []Snapshot {
	r.mu.Lock()
	all := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		all = append(all, job)
	}
	r.mu.Unlock()

	snapshots := make([]Snapshot, 0, len(all))
	for _, job := range all {
		snap := job.Snapshot()
		if status != "" && snap.Status != status {
			continue
		}
		snapshots = append(snapshots, snap)
	}
	sort.Slice(snapshots, func(i, k int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[k].CreatedAt) {
			return snapshots[i].ID < snapshots[k].ID
		}
		return snapshots[i].CreatedAt.After(snapshots[k].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(snapshots) {
			return nil
		}
		snapshots = snapshots[offset:]
	}
	if limit > 0 && limit < len(snapshots) {
		snapshots = snapshots[:limit]
	}
	return snapshots
}

// BindRun derives a cancelable context for a pipeline run and stores its
// cancel function so Cancel can interrupt the run. ReleaseRun must be called
// when the run ends.
func (r *Registry) BindRun(parent context.Context, id string) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return nil, fmt.Errorf("%w: job %s", services.ErrNotFound, id)
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancels[id] = cancel
	return ctx, nil
}

// ReleaseRun drops the stored cancel function for a finished run.
func (r *Registry) ReleaseRun(id string) {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	delete(r.cancels, id)
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// Cancel requests cancellation. A cancellable job moves to cancelled and its
// run context is cancelled so in-flight stages stop at the next check. The
// job is returned regardless of whether the cancellation took effect, so
// callers can inspect the state it was actually in.
func (r *Registry) Cancel(id string) (*Job, error) {
	job, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if job.Status().CanCancel() {
		if err := job.SetStatus(StatusCancelled); err == nil {
			r.mu.Lock()
			cancel, ok := r.cancels[id]
			r.mu.Unlock()
			if ok {
				cancel()
			}
			r.logger.Info("job cancelled", logging.String(logging.FieldJobID, id))
		}
	}
	return job, nil
}

// Delete removes the job and its output artifacts. It returns false when the
// job does not exist. A running job's context is cancelled first.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	job, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	cancel, hasCancel := r.cancels[id]
	delete(r.cancels, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	if hasCancel {
		cancel()
	}

	snap := job.Snapshot()
	for _, path := range []string{snap.OutputPath, snap.VideoOutputPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("remove job artifact failed", logging.String(logging.FieldJobID, id), logging.String("path", path), logging.Error(err))
		}
	}
	r.logger.Info("job deleted", logging.String(logging.FieldJobID, id))
	return true
}

// Count returns the number of registered jobs.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
