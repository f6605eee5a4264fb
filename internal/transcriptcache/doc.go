// Package transcriptcache persists transcription engine results in SQLite,
// keyed by the audio content digest and an engine-parameter fingerprint.
// A hit skips the engine entirely; re-running a file with the same model
// and options is free.
package transcriptcache
