package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
	"github.com/Toulik-Das/get-meeting-minutes/internal/pipeline"
)

type fakePipeline struct {
	lastReq pipeline.Request
	chunks  []string
	err     error
}

func (f *fakePipeline) Run(ctx context.Context, req pipeline.Request) *pipeline.Result {
	f.lastReq = req

	out := make(chan string, len(f.chunks)+1)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, c := range f.chunks {
			out <- c
		}
		if f.err != nil {
			errs <- f.err
		}
	}()
	return &pipeline.Result{Chunks: out, Errs: errs}
}

func (f *fakePipeline) RunToFiles(ctx context.Context, req pipeline.Request, outDir string) (string, error) {
	return "", nil
}

func newTestServer(t *testing.T, pipe pipeline.Pipeline) *Server {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.Temp = t.TempDir()
	return New(cfg, pipe, logger.New("error"))
}

func uploadRequest(t *testing.T, filename string, headers map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("fake media payload")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/minutes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakePipeline{})
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", w.Code)
	}
}

func TestMinutesRejectsUnsupportedUpload(t *testing.T) {
	pipe := &fakePipeline{chunks: []string{"should not run"}}
	s := newTestServer(t, pipe)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, uploadRequest(t, "notes.txt", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(apperr.KindUnsupportedFormat)) {
		t.Errorf("body should carry the error code, got %q", w.Body.String())
	}
	if pipe.lastReq.InputPath != "" {
		t.Error("pipeline must not run for unsupported uploads")
	}
}

func TestMinutesMissingFileField(t *testing.T) {
	s := newTestServer(t, &fakePipeline{})
	w := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/minutes", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMinutesStreamsChunks(t *testing.T) {
	pipe := &fakePipeline{chunks: []string{"# Minutes\n", "Budget approved."}}
	s := newTestServer(t, pipe)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, uploadRequest(t, "standup.wav", map[string]string{
		"X-Transcription-Key": "sk-stt",
		"X-Generation-Key":    "sk-gen",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Budget approved.") {
		t.Errorf("stream missing chunk content: %q", body)
	}
	if !strings.Contains(body, "event:done") {
		t.Errorf("stream missing terminal done event: %q", body)
	}

	// credentials flow from headers into the request
	if pipe.lastReq.TranscriptionKey != "sk-stt" || pipe.lastReq.GenerationKey != "sk-gen" {
		t.Errorf("credentials not forwarded: %+v", pipe.lastReq)
	}
}

func TestMinutesStreamsTerminalError(t *testing.T) {
	pipe := &fakePipeline{
		chunks: []string{"partial chunk "},
		err:    apperr.E(apperr.KindGenerationFailed, "generate", "inference crashed", nil),
	}
	s := newTestServer(t, pipe)
	w := httptest.NewRecorder()

	s.Router().ServeHTTP(w, uploadRequest(t, "talk.mp4", map[string]string{
		"X-Transcription-Key": "sk-stt",
	}))

	body := w.Body.String()
	if !strings.Contains(body, "partial chunk") {
		t.Errorf("chunks emitted before the failure must be delivered: %q", body)
	}
	if !strings.Contains(body, "event:error") {
		t.Errorf("stream missing terminal error event: %q", body)
	}
	if !strings.Contains(body, string(apperr.KindGenerationFailed)) {
		t.Errorf("error event missing kind: %q", body)
	}
	if strings.Contains(body, "inference crashed") {
		t.Errorf("raw backend detail must not reach the caller: %q", body)
	}
}
