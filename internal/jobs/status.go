package jobs

import "strings"

// Status represents the lifecycle of a transcription job.
type Status string

const (
	StatusPending        Status = "pending"
	StatusUploading      Status = "uploading"
	StatusQueued         Status = "queued"
	StatusProcessing     Status = "processing"
	StatusPostProcessing Status = "post_processing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusCancelled      Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusUploading,
	StatusQueued,
	StatusProcessing,
	StatusPostProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// forwardTransitions lists the normal pipeline progression. Cancellation and
// failure are handled separately below.
var forwardTransitions = map[Status][]Status{
	StatusPending:        {StatusUploading, StatusQueued},
	StatusUploading:      {StatusQueued},
	StatusQueued:         {StatusProcessing},
	StatusProcessing:     {StatusPostProcessing, StatusCompleted},
	StatusPostProcessing: {StatusCompleted},
}

var cancellableStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusQueued:     {},
	StatusProcessing: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further status or progress mutation is
// permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanCancel reports whether a job in this status may move to cancelled.
func (s Status) CanCancel() bool {
	_, ok := cancellableStatuses[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal state
// machine edge.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	if next == StatusCancelled {
		return s.CanCancel()
	}
	for _, candidate := range forwardTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
