package config

const (
	defaultUploadDir        = "~/.local/share/captiond/uploads"
	defaultOutputDir        = "~/.local/share/captiond/outputs"
	defaultTempDir          = "~/.local/share/captiond/tmp"
	defaultLogDir           = "~/.local/share/captiond/logs"
	defaultLockPath         = "~/.local/share/captiond/captiond.lock"
	defaultCachePath        = "~/.cache/captiond/transcripts.db"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultProbeTimeout     = 30
	defaultExtractTimeout   = 600
	defaultBurnTimeout      = 3600
	defaultEmbedTimeout     = 1800
	defaultThumbnailTimeout = 30
	defaultWhisperBinary    = "whisper-ctranslate2"
	defaultWhisperModel     = "base"
	defaultWhisperDevice    = "auto"
	defaultWhisperTimeout   = 1800
	defaultOutputFormat     = "srt"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			TempDir:   defaultTempDir,
			LogDir:    defaultLogDir,
			LockPath:  defaultLockPath,
		},
		FFmpeg: FFmpeg{
			Binary:           defaultFFmpegBinary,
			ProbeBinary:      defaultFFprobeBinary,
			ProbeTimeout:     defaultProbeTimeout,
			ExtractTimeout:   defaultExtractTimeout,
			BurnTimeout:      defaultBurnTimeout,
			EmbedTimeout:     defaultEmbedTimeout,
			ThumbnailTimeout: defaultThumbnailTimeout,
		},
		Whisper: Whisper{
			Binary:    defaultWhisperBinary,
			Model:     defaultWhisperModel,
			Device:    defaultWhisperDevice,
			Timeout:   defaultWhisperTimeout,
			VRAMProbe: true,
		},
		TranscriptCache: TranscriptCache{
			Enabled: true,
			Path:    defaultCachePath,
		},
		Workflow: Workflow{
			MaxConcurrentTranscriptions: 1,
			DefaultOutputFormat:         defaultOutputFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
