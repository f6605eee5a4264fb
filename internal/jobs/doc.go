// Package jobs holds the transcription job aggregate and its in-memory
// registry.
//
// A Job carries immutable request data (file, size, duration, config) and
// mutable pipeline state (status, progress, outputs, metrics) guarded by a
// per-job mutex. Status follows a fixed state machine; terminal jobs reject
// all further mutation. Progress only moves forward within a run.
//
// The Registry is the only shared structure; its lock covers map access
// only, never job mutation or I/O. It also owns one cancel function per
// active pipeline run so Cancel can interrupt in-flight work cooperatively.
package jobs
