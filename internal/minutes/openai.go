package minutes

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
)

// openAIGenerator streams minutes from the OpenAI chat completion API.
// Chunks are the stream deltas as the backend produces them.
type openAIGenerator struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string // overridable for tests
	logger    logger.Logger
}

func newOpenAI(apiKey, model string, maxTokens int, log logger.Logger) *openAIGenerator {
	return &openAIGenerator{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		logger:    log,
	}
}

func (g *openAIGenerator) Generate(ctx context.Context, transcript string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if strings.TrimSpace(g.apiKey) == "" {
			errs <- apperr.E(apperr.KindMissingCredential, "generate",
				"generation API key is required", nil)
			return
		}

		cfg := openai.DefaultConfig(g.apiKey)
		if g.baseURL != "" {
			cfg.BaseURL = g.baseURL
		}
		client := openai.NewClientWithConfig(cfg)

		prompt := BuildPrompt(transcript)
		req := openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
				{Role: openai.ChatMessageRoleUser, Content: prompt.User},
			},
			MaxTokens: g.maxTokens,
			N:         1,
			Stream:    true,
		}

		stream, err := client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			errs <- apperr.E(apperr.KindGenerationFailed, "generate",
				"generation backend call failed", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- apperr.E(apperr.KindGenerationFailed, "generate",
					"generation stream failed", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			chunk := resp.Choices[0].Delta.Content
			if chunk == "" {
				continue
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}
