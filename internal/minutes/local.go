package minutes

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/pkg/executor"
)

// modelCache guards the one-time model fetch. The fetched weights are
// process-wide state: the first request to load successfully pays the
// cost, every later request in the same process reuses it. Torn down only
// at process exit. Only success is cached; a failed load leaves the cache
// cold so the next request retries with its own credentials.
type modelCache struct {
	mu     sync.Mutex
	loaded bool
}

var (
	sharedModel modelCache

	// The inference engine is not documented reentrant, so concurrent
	// requests take turns.
	inferMu sync.Mutex
)

// localGenerator runs inference with a llama.cpp-style binary against a
// locally resident model. Output is streamed line by line as it appears
// on stdout.
type localGenerator struct {
	cfg           *config.Config
	executor      executor.Executor
	registryToken string
	cache         *modelCache
	logger        logger.Logger
}

func newLocal(cfg *config.Config, exec executor.Executor, registryToken string, log logger.Logger) *localGenerator {
	return &localGenerator{
		cfg:           cfg,
		executor:      exec,
		registryToken: registryToken,
		cache:         &sharedModel,
		logger:        log,
	}
}

func (g *localGenerator) Generate(ctx context.Context, transcript string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if err := g.ensureModel(ctx); err != nil {
			errs <- err
			return
		}

		prompt := BuildPrompt(transcript)
		args := []string{
			"-m", g.cfg.Generator.Local.ModelPath,
			"-p", prompt.Combined(),
			"-n", strconv.Itoa(g.cfg.Generator.MaxNewTokens),
			"--no-display-prompt",
		}

		inferMu.Lock()
		defer inferMu.Unlock()

		g.logger.Info(ctx, "Starting local inference: %s", g.cfg.Generator.Local.ModelPath)

		err := g.executor.Stream(ctx, func(line string) {
			select {
			case out <- line + "\n":
			case <-ctx.Done():
			}
		}, g.cfg.Generator.Local.BinaryPath, args...)
		if err != nil {
			errs <- apperr.E(apperr.KindGenerationFailed, "generate",
				"local inference failed", err)
			return
		}

		g.logger.Info(ctx, "Local inference complete")
	}()

	return out, errs
}

// ensureModel makes sure the binary and model weights are in place,
// fetching the model from the registry on first use.
func (g *localGenerator) ensureModel(ctx context.Context) error {
	g.cache.mu.Lock()
	defer g.cache.mu.Unlock()

	if g.cache.loaded {
		return nil
	}
	if err := g.loadModel(ctx); err != nil {
		return err
	}
	g.cache.loaded = true
	return nil
}

func (g *localGenerator) loadModel(ctx context.Context) error {
	local := g.cfg.Generator.Local

	if _, err := os.Stat(local.BinaryPath); err != nil {
		return apperr.E(apperr.KindModelLoadFailed, "generate",
			"inference binary not found", err)
	}

	if _, err := os.Stat(local.ModelPath); err == nil {
		g.logger.Debug(ctx, "Model already present: %s", local.ModelPath)
		return nil
	}

	if local.ModelRepo == "" {
		return apperr.E(apperr.KindModelLoadFailed, "generate",
			"model file missing and no registry repo configured", nil)
	}
	if strings.TrimSpace(g.registryToken) == "" {
		return apperr.E(apperr.KindMissingCredential, "generate",
			"model registry token is required to fetch the model", nil)
	}

	g.logger.Info(ctx, "Fetching model %s from registry (first use)", local.ModelRepo)

	modelDir := filepath.Dir(local.ModelPath)
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return apperr.E(apperr.KindModelLoadFailed, "generate",
			"create model directory", err)
	}

	// the registry CLI drops lock and metadata files relative to its
	// working directory, keep them next to the weights
	_, err := g.executor.ExecuteInDir(ctx, modelDir, local.RegistryCLI,
		"download", local.ModelRepo,
		"--local-dir", ".",
		"--token", g.registryToken,
	)
	if err != nil {
		if authFailure(err) {
			return apperr.E(apperr.KindAuthenticationFailed, "generate",
				"model registry login failed", err)
		}
		return apperr.E(apperr.KindModelLoadFailed, "generate",
			"model fetch failed", err)
	}

	if _, err := os.Stat(local.ModelPath); err != nil {
		return apperr.E(apperr.KindModelLoadFailed, "generate",
			"model file missing after registry fetch", err)
	}

	g.logger.Info(ctx, "Model ready: %s", local.ModelPath)
	return nil
}

func authFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid token") ||
		strings.Contains(msg, "invalid user token")
}
