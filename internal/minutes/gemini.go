package minutes

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
)

// geminiGenerator produces minutes with a single Gemini request and emits
// the complete response as one chunk.
type geminiGenerator struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string // overridable for tests
	logger    logger.Logger
}

func newGemini(apiKey, model string, maxTokens int, log logger.Logger) *geminiGenerator {
	return &geminiGenerator{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		logger:    log,
	}
}

func (g *geminiGenerator) Generate(ctx context.Context, transcript string) (<-chan string, <-chan error) {
	out := make(chan string, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if strings.TrimSpace(g.apiKey) == "" {
			errs <- apperr.E(apperr.KindMissingCredential, "generate",
				"generation API key is required", nil)
			return
		}

		cc := &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.baseURL != "" {
			cc.HTTPOptions.BaseURL = g.baseURL
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			errs <- apperr.E(apperr.KindGenerationFailed, "generate",
				"create generation client", err)
			return
		}

		prompt := BuildPrompt(transcript)
		cfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
			MaxOutputTokens:   int32(g.maxTokens),
			CandidateCount:    1,
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.User), cfg)
		if err != nil {
			errs <- apperr.E(apperr.KindGenerationFailed, "generate",
				"generation backend call failed", err)
			return
		}

		text := collectText(result)
		if text == "" {
			errs <- apperr.E(apperr.KindGenerationFailed, "generate",
				"empty response from generation backend", nil)
			return
		}

		select {
		case out <- text:
		case <-ctx.Done():
		}
	}()

	return out, errs
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}
