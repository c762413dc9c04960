package transcribe

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
)

// openAIBackend sends audio to the OpenAI transcription endpoint and
// requests plain-text output.
type openAIBackend struct {
	apiKey  string
	model   string
	retries int
	baseURL string // overridable for tests
	logger  logger.Logger
}

// NewOpenAI creates a transcription backend using the caller-supplied API
// key. retries is the number of additional attempts after a transient
// failure; 0 means a single attempt.
func NewOpenAI(apiKey, model string, retries int, log logger.Logger) Backend {
	return &openAIBackend{
		apiKey:  apiKey,
		model:   model,
		retries: retries,
		logger:  log,
	}
}

func (b *openAIBackend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	// Fail fast before any network call is attempted.
	if strings.TrimSpace(b.apiKey) == "" {
		return "", apperr.E(apperr.KindMissingCredential, "transcribe",
			"transcription API key is required", nil)
	}

	cfg := openai.DefaultConfig(b.apiKey)
	if b.baseURL != "" {
		cfg.BaseURL = b.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	b.logger.Info(ctx, "Starting transcription for file: %s", audioPath)

	var lastErr error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			b.logger.Warn(ctx, "Transcription attempt %d failed, retrying in %s: %v",
				attempt, backoff, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperr.E(apperr.KindTranscriptionFailed, "transcribe",
					"transcription cancelled", ctx.Err())
			}
		}

		resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    b.model,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatText,
		})
		if err != nil {
			lastErr = err
			if transient(err) {
				continue
			}
			return "", apperr.E(apperr.KindTranscriptionFailed, "transcribe",
				"transcription backend call failed", err)
		}

		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return "", apperr.E(apperr.KindTranscriptionFailed, "transcribe",
				"transcription backend returned no usable text", nil)
		}

		b.logger.Info(ctx, "Transcription complete (%d chars)", len(text))
		return text, nil
	}

	return "", apperr.E(apperr.KindTranscriptionFailed, "transcribe",
		"transcription backend call failed", lastErr)
}

// transient reports whether the failure is worth a bounded retry:
// rate limiting or a server-side error.
func transient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}
