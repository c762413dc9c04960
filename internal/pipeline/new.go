package pipeline

import (
	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/internal/media"
	"github.com/Toulik-Das/get-meeting-minutes/internal/minutes"
	"github.com/Toulik-Das/get-meeting-minutes/internal/transcribe"
	"github.com/Toulik-Das/get-meeting-minutes/pkg/executor"
)

type implPipeline struct {
	cfg        *config.Config
	normalizer media.Normalizer
	logger     logger.Logger

	// backends are built per request because credentials arrive with
	// the request
	newTranscriber func(apiKey string) transcribe.Backend
	newGenerator   func(creds minutes.Credentials) (minutes.Generator, error)
}

// New creates a new Pipeline instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:        cfg,
		normalizer: media.New(cfg, exec, log),
		logger:     log,
		newTranscriber: func(apiKey string) transcribe.Backend {
			return transcribe.NewOpenAI(apiKey, cfg.Transcriber.Model, cfg.Transcriber.Retries, log)
		},
		newGenerator: func(creds minutes.Credentials) (minutes.Generator, error) {
			return minutes.New(cfg, exec, creds, log)
		},
	}
}
