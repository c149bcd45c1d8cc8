package config

import (
	"fmt"
	"time"
)

type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Readiness     ReadinessConfig     `yaml:"readiness"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Downloader    DownloaderConfig    `yaml:"downloader"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Summary       SummaryConfig       `yaml:"summary"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
}

type PathsConfig struct {
	DestRoot string `yaml:"dest_root"`
	Inbox    string `yaml:"inbox"`
	Temp     string `yaml:"temp"`

	// SourceRoot confines local paths submitted over HTTP.
	SourceRoot string `yaml:"source_root"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	AcquisitionConcurrency   int `yaml:"acquisition_concurrency"`
	TranscriptionConcurrency int `yaml:"transcription_concurrency"`
	SummarizationConcurrency int `yaml:"summarization_concurrency"`
	ChunkConcurrency         int `yaml:"chunk_concurrency"`
	InboxConcurrency         int `yaml:"inbox_concurrency"`
}

type ReadinessConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	UseGPU     bool   `yaml:"use_gpu"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	SampleRate int    `yaml:"sample_rate"`
}

type DownloaderConfig struct {
	BinaryPath  string   `yaml:"binary_path"`
	AudioFormat string   `yaml:"audio_format"`
	ExtraArgs   []string `yaml:"extra_args"`
}

type TranscriptionConfig struct {
	Engine          string `yaml:"engine"`
	CredentialsFile string `yaml:"credentials_file"`
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	TokensPerMinute int           `yaml:"tokens_per_minute"`
	Window          time.Duration `yaml:"window"`
	MaxRetries      *int          `yaml:"max_retries"`
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SummaryConfig struct {
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	DefaultStyle string        `yaml:"default_style"`
	Language     string        `yaml:"language"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type StorageConfig struct {
	Sink                  string `yaml:"sink"`
	MongoURI              string `yaml:"mongo_uri"`
	MongoDB               string `yaml:"mongo_db"`
	PostgresDSN           string `yaml:"postgres_dsn"`
	RedisAddr             string `yaml:"redis_addr"`
	GCSBucket             string `yaml:"gcs_bucket"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	Report                bool   `yaml:"report"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"`
}

func (c *Config) Validate() error {
	if c.Paths.DestRoot == "" {
		return fmt.Errorf("paths.dest_root is required")
	}

	if c.Transcription.Engine == "" {
		c.Transcription.Engine = "whisper"
	}
	switch c.Transcription.Engine {
	case "whisper":
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required")
		}
	case "google":
	default:
		return fmt.Errorf("transcription.engine %q is not supported", c.Transcription.Engine)
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Provider != "gemini" && c.LLM.Provider != "openai" {
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}

	if c.Storage.Sink == "" {
		c.Storage.Sink = "log"
	}
	switch c.Storage.Sink {
	case "log":
	case "mongo":
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for the mongo sink")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres sink")
		}
	default:
		return fmt.Errorf("storage.sink %q is not supported", c.Storage.Sink)
	}

	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.SourceRoot == "" {
		c.Paths.SourceRoot = c.Paths.Inbox
	}
	if c.Performance.AcquisitionConcurrency <= 0 {
		c.Performance.AcquisitionConcurrency = 5
	}
	if c.Performance.TranscriptionConcurrency <= 0 {
		c.Performance.TranscriptionConcurrency = 5
	}
	if c.Performance.SummarizationConcurrency <= 0 {
		c.Performance.SummarizationConcurrency = 5
	}
	if c.Performance.ChunkConcurrency <= 0 {
		c.Performance.ChunkConcurrency = 1
	}
	if c.Performance.InboxConcurrency <= 0 {
		c.Performance.InboxConcurrency = 2
	}
	if c.Readiness.MaxAttempts <= 0 {
		c.Readiness.MaxAttempts = 10
	}
	if c.Readiness.Interval <= 0 {
		c.Readiness.Interval = 500 * time.Millisecond
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Downloader.BinaryPath == "" {
		c.Downloader.BinaryPath = "yt-dlp"
	}
	if c.Downloader.AudioFormat == "" {
		c.Downloader.AudioFormat = "mp3"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.TokensPerMinute <= 0 {
		c.LLM.TokensPerMinute = 200000
	}
	if c.LLM.MaxTokens > c.LLM.TokensPerMinute {
		return fmt.Errorf("llm.max_tokens (%d) exceeds llm.tokens_per_minute (%d)", c.LLM.MaxTokens, c.LLM.TokensPerMinute)
	}
	if c.LLM.Window <= 0 {
		c.LLM.Window = time.Minute
	}
	// unset means 2, an explicit 0 disables retries
	if c.LLM.MaxRetries == nil {
		retries := 2
		c.LLM.MaxRetries = &retries
	} else if *c.LLM.MaxRetries < 0 {
		*c.LLM.MaxRetries = 0
	}
	if c.LLM.RetryMaxElapsed <= 0 {
		c.LLM.RetryMaxElapsed = 30 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = c.Gemini.Model
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = 60
	}
	if c.Summary.ChunkSize <= 0 {
		c.Summary.ChunkSize = c.LLM.MaxTokens
	}
	if c.Summary.ChunkOverlap < 0 || c.Summary.ChunkOverlap >= c.Summary.ChunkSize {
		return fmt.Errorf("summary.chunk_overlap must be in [0, chunk_size)")
	}
	if c.Summary.DefaultStyle == "" {
		c.Summary.DefaultStyle = "summary"
	}
	if c.Summary.Language == "" {
		c.Summary.Language = "en"
	}
	if c.Summary.CacheTTL <= 0 {
		c.Summary.CacheTTL = 24 * time.Hour
	}
	if c.Storage.MongoDB == "" {
		c.Storage.MongoDB = "brief_flow"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	return nil
}
