package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/minutes"
	"github.com/Toulik-Das/get-meeting-minutes/internal/output"
)

// Stage names the phase a request is in. The machine is linear:
// Idle → Normalizing → Transcribing → Generating → Streaming → Done,
// with Failed terminal from any non-terminal stage. There is no retry or
// resume; a failed request is resubmitted whole.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageNormalizing  Stage = "normalizing"
	StageTranscribing Stage = "transcribing"
	StageGenerating   Stage = "generating"
	StageStreaming    Stage = "streaming"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Run orchestrates the full pipeline for one request.
func (p *implPipeline) Run(ctx context.Context, req Request) *Result {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		startTime := time.Now()
		stage := StageIdle

		fail := func(err error) {
			p.logger.Error(ctx, "Pipeline failed during %s for %s: %v", stage, req.InputPath, err)
			stage = StageFailed
			errs <- err
		}

		p.logger.Info(ctx, "Starting minutes pipeline: %s", req.InputPath)

		// Step 1: normalize media to audio
		stage = StageNormalizing
		audioPath, err := p.normalizer.Normalize(ctx, req.InputPath)
		if err != nil {
			fail(err)
			return
		}
		if audioPath != req.InputPath {
			defer p.cleanupTempFile(ctx, audioPath)
		}

		// Step 2: transcribe audio to text
		stage = StageTranscribing
		transcript, err := p.newTranscriber(req.TranscriptionKey).Transcribe(ctx, audioPath)
		if err != nil {
			fail(err)
			return
		}

		// Step 3: generate minutes, streaming chunks to the caller
		stage = StageGenerating
		gen, err := p.newGenerator(minutes.Credentials{
			APIKey:        req.GenerationKey,
			RegistryToken: req.RegistryToken,
		})
		if err != nil {
			fail(apperr.E(apperr.KindGenerationFailed, "generate", "configure generation backend", err))
			return
		}

		chunks, genErrs := gen.Generate(ctx, transcript)

		stage = StageStreaming
		for chunk := range chunks {
			select {
			case out <- chunk:
			case <-ctx.Done():
				fail(apperr.E(apperr.KindGenerationFailed, "generate", "request cancelled", ctx.Err()))
				return
			}
		}
		if err := <-genErrs; err != nil {
			fail(err)
			return
		}

		stage = StageDone
		p.logger.Info(ctx, "Pipeline completed in %s (stage=%s): %s",
			time.Since(startTime).Truncate(time.Millisecond), stage, req.InputPath)
	}()

	return &Result{Chunks: out, Errs: errs}
}

// RunToFiles drains the stream and writes the minutes as markdown and docx.
func (p *implPipeline) RunToFiles(ctx context.Context, req Request, outDir string) (string, error) {
	res := p.Run(ctx, req)

	var b strings.Builder
	for chunk := range res.Chunks {
		b.WriteString(chunk)
	}
	if err := <-res.Errs; err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	doc := output.Document(name, b.String())

	mdPath := filepath.Join(outDir, name+".md")
	if err := os.WriteFile(mdPath, []byte(doc), 0644); err != nil {
		return "", err
	}

	docxPath := filepath.Join(outDir, name+".docx")
	if err := output.WriteDocx(name, b.String(), docxPath); err != nil {
		// the markdown document already succeeded; don't fail the request
		p.logger.Warn(ctx, "Failed to write docx %s: %v", docxPath, err)
	}

	p.logger.Info(ctx, "Minutes written: %s", mdPath)
	return mdPath, nil
}

// cleanupTempFile removes an extracted audio file, logs warning if fails
func (p *implPipeline) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}
