package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/internal/pipeline"
	"github.com/Toulik-Das/get-meeting-minutes/internal/server"
	"github.com/Toulik-Das/get-meeting-minutes/internal/watcher"
	"github.com/Toulik-Das/get-meeting-minutes/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	inputPath := flag.String("input", "", "meeting recording to process (file mode)")
	mode := flag.String("mode", "file", "run mode: file, watch, or serve")
	flag.Parse()

	ctx := context.Background()

	// .env is optional; real deployments export the variables directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// running without a config file is fine, defaults cover it
		if !errors.Is(err, os.ErrNotExist) || *configPath != "config.yaml" {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = &config.Config{}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Minutes Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	log.Info(ctx, "Generator backend: %s", cfg.Generator.Backend)
	log.Info(ctx, "Configuration loaded successfully")

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	exec := executor.New()
	pipe := pipeline.New(cfg, exec, log)

	switch *mode {
	case "file":
		if *inputPath == "" {
			fmt.Fprintln(os.Stderr, "file mode requires -input")
			os.Exit(1)
		}
		if err := runFile(ctx, cfg, pipe, log, *inputPath); err != nil {
			log.Error(ctx, "Processing failed: %v", err)
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(ctx, cfg, pipe, log); err != nil {
			log.Error(ctx, "Watcher error: %v", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(ctx, cfg, pipe, log); err != nil {
			log.Error(ctx, "Server error: %v", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q (want file, watch, or serve)\n", *mode)
		os.Exit(1)
	}
}

// runFile processes a single recording and writes minutes to the output
// directory.
func runFile(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger, input string) error {
	mdPath, err := pipe.RunToFiles(ctx, requestFor(input), cfg.Paths.Output)
	if err != nil {
		return err
	}
	log.Info(ctx, "Minutes written to %s", mdPath)
	return nil
}

// runWatch monitors the input directory and processes recordings as they
// land, until interrupted.
func runWatch(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger) error {
	handler := func(ctx context.Context, filePath string) error {
		_, err := pipe.RunToFiles(ctx, requestFor(filePath), cfg.Paths.Output)
		return err
	}

	w, err := watcher.New(cfg.Paths.Input, handler, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		return err
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()
	return nil
}

// runServe exposes the pipeline over HTTP until interrupted.
func runServe(ctx context.Context, cfg *config.Config, pipe pipeline.Pipeline, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info(ctx, "Shutdown signal received")
		cancel()
	}()

	return server.New(cfg, pipe, log).Run(ctx)
}

// requestFor builds a request with credentials read from the environment.
// Keys stay in memory for the life of the run and are never logged.
func requestFor(input string) pipeline.Request {
	return pipeline.Request{
		InputPath:        input,
		TranscriptionKey: os.Getenv("OPENAI_API_KEY"),
		GenerationKey:    generationKey(),
		RegistryToken:    os.Getenv("HF_TOKEN"),
	}
}

func generationKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
