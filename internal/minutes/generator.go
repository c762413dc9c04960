package minutes

import (
	"context"
	"fmt"

	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/pkg/executor"
)

// Generator turns a meeting transcript into minutes, delivered as a lazy
// sequence of text chunks. Both channels are closed when the run finishes;
// a value on errs means the run aborted and no further chunks follow.
// Chunks already delivered are never retracted.
type Generator interface {
	Generate(ctx context.Context, transcript string) (chunks <-chan string, errs <-chan error)
}

// Credentials are the caller-supplied keys for the generation backends.
// They are held in memory for the request only and never logged.
type Credentials struct {
	APIKey        string // remote generation backend key
	RegistryToken string // model registry token for the local backend
}

// New selects a generation backend from configuration.
func New(cfg *config.Config, exec executor.Executor, creds Credentials, log logger.Logger) (Generator, error) {
	switch cfg.Generator.Backend {
	case "openai":
		return newOpenAI(creds.APIKey, cfg.Generator.Model, cfg.Generator.MaxNewTokens, log), nil
	case "gemini":
		return newGemini(creds.APIKey, cfg.Generator.Model, cfg.Generator.MaxNewTokens, log), nil
	case "local":
		return newLocal(cfg, exec, creds.RegistryToken, log), nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q (supported: openai, gemini, local)", cfg.Generator.Backend)
	}
}
