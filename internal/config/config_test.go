package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Paths: PathsConfig{DestRoot: "data/output"},
		Whisper: WhisperConfig{
			ModelPath:  "models/test.bin",
			BinaryPath: "./whisper",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing model path", mutate: func(c *Config) { c.Whisper.ModelPath = "" }, wantErr: true},
		{name: "missing dest root", mutate: func(c *Config) { c.Paths.DestRoot = "" }, wantErr: true},
		{
			name: "google engine needs no whisper",
			mutate: func(c *Config) {
				c.Transcription.Engine = "google"
				c.Whisper = WhisperConfig{}
			},
		},
		{name: "unknown engine", mutate: func(c *Config) { c.Transcription.Engine = "vosk" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "llama" }, wantErr: true},
		{name: "mongo sink without uri", mutate: func(c *Config) { c.Storage.Sink = "mongo" }, wantErr: true},
		{name: "postgres sink with dsn", mutate: func(c *Config) {
			c.Storage.Sink = "postgres"
			c.Storage.PostgresDSN = "postgres://localhost/db"
		}},
		{name: "overlap not below chunk size", mutate: func(c *Config) {
			c.Summary.ChunkSize = 100
			c.Summary.ChunkOverlap = 100
		}, wantErr: true},
		{name: "max tokens above allowance", mutate: func(c *Config) {
			c.LLM.MaxTokens = 5000
			c.LLM.TokensPerMinute = 1000
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Readiness.MaxAttempts != 10 || cfg.Readiness.Interval != 500*time.Millisecond {
		t.Errorf("readiness defaults = %d/%s, want 10/500ms", cfg.Readiness.MaxAttempts, cfg.Readiness.Interval)
	}
	if cfg.Performance.AcquisitionConcurrency != 5 || cfg.Performance.TranscriptionConcurrency != 5 || cfg.Performance.SummarizationConcurrency != 5 {
		t.Errorf("stage gates = %+v, want 5/5/5", cfg.Performance)
	}
	if cfg.LLM.Window != time.Minute {
		t.Errorf("Window = %s, want 1m", cfg.LLM.Window)
	}
	if cfg.Summary.ChunkSize != cfg.LLM.MaxTokens {
		t.Errorf("ChunkSize = %d, want max_tokens %d", cfg.Summary.ChunkSize, cfg.LLM.MaxTokens)
	}
	if cfg.Storage.Sink != "log" {
		t.Errorf("Sink = %q, want log", cfg.Storage.Sink)
	}
	if cfg.LLM.MaxRetries == nil || *cfg.LLM.MaxRetries != 2 {
		t.Errorf("MaxRetries = %v, want 2", cfg.LLM.MaxRetries)
	}
}

func TestValidateExplicitZeroRetries(t *testing.T) {
	cfg := validConfig()
	zero := 0
	cfg.LLM.MaxRetries = &zero
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if *cfg.LLM.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", *cfg.LLM.MaxRetries)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	t.Setenv("BRIEF_TEST_KEY", "secret-key")

	content := `
paths:
  dest_root: "data/output"
  inbox: "data/inbox"

whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"

readiness:
  max_attempts: 3
  interval: 250ms

llm:
  provider: gemini
  max_tokens: 2000
  tokens_per_minute: 10000

gemini:
  api_keys: ["${BRIEF_TEST_KEY}"]

logging:
  level: "info"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.ModelPath != "models/test.bin" {
		t.Errorf("ModelPath = %v, want %v", cfg.Whisper.ModelPath, "models/test.bin")
	}
	if cfg.Readiness.Interval != 250*time.Millisecond {
		t.Errorf("Interval = %s, want 250ms", cfg.Readiness.Interval)
	}
	if len(cfg.Gemini.APIKeys) != 1 || cfg.Gemini.APIKeys[0] != "secret-key" {
		t.Errorf("APIKeys = %v, want expanded env value", cfg.Gemini.APIKeys)
	}
	if cfg.Summary.ChunkSize != 2000 {
		t.Errorf("ChunkSize = %d, want 2000", cfg.Summary.ChunkSize)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
