// Package whisper drives an external faster-whisper CLI and converts its
// JSON output into the subtitle model. The engine call is blocking and
// GPU/CPU bound; callers bound concurrency and pass a cancelable context.
package whisper
