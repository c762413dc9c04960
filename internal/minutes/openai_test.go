package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
)

// drain collects every chunk and the terminal error (if any) from a
// generator run.
func drain(t *testing.T, chunks <-chan string, errs <-chan error) ([]string, error) {
	t.Helper()
	var got []string
	for chunk := range chunks {
		got = append(got, chunk)
	}
	return got, <-errs
}

func sseChunk(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion.chunk",
		"choices": []map[string]any{
			{"index": 0, "delta": map[string]string{"content": content}},
		},
	})
	return fmt.Sprintf("data: %s\n\n", payload)
}

func TestOpenAIGenerateStreamsChunks(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, sseChunk("# Meeting Minutes\n"))
		_, _ = fmt.Fprint(w, sseChunk("## Summary\n"))
		_, _ = fmt.Fprint(w, sseChunk("Budget approved."))
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := newOpenAI("test-key", "gpt-4o", 2000, logger.New("error"))
	g.baseURL = srv.URL + "/v1"

	chunks, errs := g.Generate(context.Background(), "Hello team, let's begin.")
	got, err := drain(t, chunks, errs)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	joined := strings.Join(got, "")
	want := "# Meeting Minutes\n## Summary\nBudget approved."
	if joined != want {
		t.Errorf("joined chunks = %q, want %q", joined, want)
	}
	if len(got) < 2 {
		t.Errorf("got %d chunks, want incremental delivery", len(got))
	}

	// the request must carry the two fixed instruction messages
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("request carried %d messages, want 2", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	content, _ := user["content"].(string)
	if !strings.HasSuffix(content, "Hello team, let's begin.") {
		t.Errorf("user message must embed the transcript verbatim, got %q", content)
	}
	if maxTokens, _ := gotBody["max_tokens"].(float64); maxTokens != 2000 {
		t.Errorf("max_tokens = %v, want 2000", maxTokens)
	}
}

func TestOpenAIGenerateMissingCredential(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	g := newOpenAI("", "gpt-4o", 2000, logger.New("error"))
	g.baseURL = srv.URL + "/v1"

	chunks, errs := g.Generate(context.Background(), "transcript")
	got, err := drain(t, chunks, errs)

	if !apperr.IsKind(err, apperr.KindMissingCredential) {
		t.Fatalf("Generate() error kind = %v, want MissingCredential", apperr.KindOf(err))
	}
	if len(got) != 0 {
		t.Errorf("got %d chunks before credential check, want 0", len(got))
	}
	if hits != 0 {
		t.Errorf("backend was invoked %d times, want 0", hits)
	}
}

func TestOpenAIGenerateBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream on fire","type":"server_error"}}`))
	}))
	defer srv.Close()

	g := newOpenAI("test-key", "gpt-4o", 2000, logger.New("error"))
	g.baseURL = srv.URL + "/v1"

	chunks, errs := g.Generate(context.Background(), "transcript")
	_, err := drain(t, chunks, errs)

	if !apperr.IsKind(err, apperr.KindGenerationFailed) {
		t.Fatalf("Generate() error kind = %v, want GenerationFailed", apperr.KindOf(err))
	}
}
