package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

const usage = `Usage: pipeline [-config config.yaml] [serve | run <request.json>]

  serve              start the HTTP API and the inbox watcher (default)
  run <request.json> process one batch request and print the result as JSON
`

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("BRIEF_FLOW_CONFIG", "config.yaml"), "path to the YAML config")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Brief Flow: media -> transcript -> summary")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Gates: acquisition %d, transcription %d, summarization %d",
		cfg.Performance.AcquisitionConcurrency, cfg.Performance.TranscriptionConcurrency, cfg.Performance.SummarizationConcurrency)
	log.Info(ctx, "Transcription: %s, LLM: %s (%s), %d tokens/window",
		cfg.Transcription.Engine, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.TokensPerMinute)

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer a.close(context.Background())

	args := flag.Args()
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "serve":
		err = serve(ctx, a)
	case "run":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = runRequestFile(ctx, a, args[1], os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error(ctx, "%s failed: %v", cmd, err)
		a.close(context.Background())
		os.Exit(1)
	}
	log.Info(ctx, "Brief Flow stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.DestRoot, cfg.Paths.Inbox, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
