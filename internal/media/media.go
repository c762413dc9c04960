package media

import (
	"context"

	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/pkg/executor"
)

// Normalizer converts an uploaded meeting recording into a standalone
// audio file suitable for transcription. Audio uploads pass through
// unchanged; video uploads get their audio track extracted.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, error)
}

type implNormalizer struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Normalizer instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Normalizer {
	return &implNormalizer{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
