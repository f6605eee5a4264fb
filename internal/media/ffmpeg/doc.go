// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind a Toolkit
// with a bounded wall-clock timeout per operation. Timeouts surface as a
// distinct timeout error so callers can tell a slow tool from a broken one.
package ffmpeg
