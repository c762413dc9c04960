package pipeline

import "context"

// Pipeline runs one meeting recording through normalize → transcribe →
// generate and surfaces the minutes incrementally.
type Pipeline interface {
	// Run starts processing and returns immediately. Chunks arrive on
	// Result.Chunks as generation produces them; a value on Result.Errs
	// means the run reached the terminal failed state and no further
	// chunks follow. Both channels close when the run ends.
	Run(ctx context.Context, req Request) *Result

	// RunToFiles collects the whole stream and writes <name>.md and
	// <name>.docx into outDir.
	RunToFiles(ctx context.Context, req Request, outDir string) (mdPath string, err error)
}

// Request is one meeting recording plus the caller-supplied credentials.
// Credentials live only as long as the request and are never logged.
type Request struct {
	InputPath        string
	TranscriptionKey string
	GenerationKey    string
	RegistryToken    string
}

// Result carries the lazy chunk stream of a running request.
type Result struct {
	Chunks <-chan string
	Errs   <-chan error
}
