package preflight

import (
	"context"

	"captiond/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeBytes is the free-space floor for the output directory. Burned-in
// video outputs can be large.
const MinFreeBytes = uint64(1) << 30

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("FFmpeg", cfg.FFmpeg.Binary, "required for audio extraction and burn-in"),
		CheckBinary("FFprobe", cfg.FFmpeg.ProbeBinary, "required for media inspection"),
		CheckBinary("Whisper", cfg.Whisper.Binary, "required for transcription"),
		CheckDirectoryAccess("Upload directory", cfg.Paths.UploadDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDiskSpace("Output free space", cfg.Paths.OutputDir, MinFreeBytes),
	}
	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
