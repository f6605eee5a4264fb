// Package pipeline drives a transcription job through its stages: probe and
// audio extraction, engine transcription, subtitle rendering, and the
// optional burn-in or soft-sub embed. Each stage boundary checks the job's
// run context so cancellation takes effect between stages, and the engine
// sits behind an admission semaphore so concurrent jobs cannot oversubscribe
// the GPU.
package pipeline
