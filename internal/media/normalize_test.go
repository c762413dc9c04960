package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/config"
	"github.com/Toulik-Das/get-meeting-minutes/internal/logger"
)

// fakeExecutor records every command and replays scripted results.
type fakeExecutor struct {
	calls   [][]string
	results map[string]string // keyed by command name
	errs    map[string]error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		results: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.results[name], f.errs[name]
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) Stream(ctx context.Context, onLine func(string), name string, args ...string) error {
	_, err := f.Execute(ctx, name, args...)
	return err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.Temp = t.TempDir()
	return cfg
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		wantKind Kind
		wantErr  bool
	}{
		{"interview.wav", KindAudio, false},
		{"standup.mp3", KindAudio, false},
		{"memo.m4a", KindAudio, false},
		{"clip.mp4", KindVideo, false},
		{"townhall.MOV", KindVideo, false},
		{"notes.txt", "", true},
		{"minutes.pdf", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, err := Classify(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.IsKind(err, apperr.KindUnsupportedFormat) {
					t.Errorf("Classify() error kind = %v, want UnsupportedFormat", apperr.KindOf(err))
				}
				return
			}
			if kind != tt.wantKind {
				t.Errorf("Classify() = %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestNormalizeAudioPassThrough(t *testing.T) {
	exec := newFakeExecutor()
	n := New(testConfig(t), exec, logger.New("error"))

	for _, name := range []string{"interview.wav", "sync.mp3", "memo.m4a"} {
		got, err := n.Normalize(context.Background(), name)
		if err != nil {
			t.Fatalf("Normalize(%s) error = %v", name, err)
		}
		if got != name {
			t.Errorf("Normalize(%s) = %q, want input returned unchanged", name, got)
		}
	}

	if len(exec.calls) != 0 {
		t.Errorf("audio pass-through ran %d commands, want 0", len(exec.calls))
	}
}

func TestNormalizeUnsupportedNoIO(t *testing.T) {
	exec := newFakeExecutor()
	n := New(testConfig(t), exec, logger.New("error"))

	_, err := n.Normalize(context.Background(), "notes.txt")
	if !apperr.IsKind(err, apperr.KindUnsupportedFormat) {
		t.Fatalf("Normalize() error kind = %v, want UnsupportedFormat", apperr.KindOf(err))
	}
	if len(exec.calls) != 0 {
		t.Errorf("unsupported input ran %d commands, want 0", len(exec.calls))
	}
}

func TestNormalizeMissingVideo(t *testing.T) {
	exec := newFakeExecutor()
	n := New(testConfig(t), exec, logger.New("error"))

	_, err := n.Normalize(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"))
	if !apperr.IsKind(err, apperr.KindSourceNotFound) {
		t.Fatalf("Normalize() error kind = %v, want SourceNotFound", apperr.KindOf(err))
	}
}

func TestNormalizeVideoCapsDuration(t *testing.T) {
	cfg := testConfig(t) // duration_minutes defaults to 20
	exec := newFakeExecutor()
	exec.results["ffprobe"] = "1800.000000\n" // 30 minute source

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(videoPath, []byte("not a real mp4"), 0644); err != nil {
		t.Fatal(err)
	}

	n := New(cfg, exec, logger.New("error"))
	audioPath, err := n.Normalize(context.Background(), videoPath)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if filepath.Ext(audioPath) != ".wav" {
		t.Errorf("Normalize() output = %q, want .wav path", audioPath)
	}

	// last call is the ffmpeg extraction; the -t argument carries the cap
	if len(exec.calls) != 2 {
		t.Fatalf("ran %d commands, want 2 (ffprobe + ffmpeg)", len(exec.calls))
	}
	ffmpeg := exec.calls[1]
	capArg := argAfter(ffmpeg, "-t")
	if capArg != "1200.000" {
		t.Errorf("ffmpeg -t = %q, want 1200.000 (min of 1200s cap and 1800s source)", capArg)
	}
}

func TestNormalizeShortVideoKeepsFullDuration(t *testing.T) {
	cfg := testConfig(t)
	exec := newFakeExecutor()
	exec.results["ffprobe"] = "90.500000\n"

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "short.mov")
	if err := os.WriteFile(videoPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	n := New(cfg, exec, logger.New("error"))
	if _, err := n.Normalize(context.Background(), videoPath); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	capArg := argAfter(exec.calls[1], "-t")
	if capArg != "90.500" {
		t.Errorf("ffmpeg -t = %q, want 90.500 (source shorter than cap)", capArg)
	}
}

func TestNormalizeExtractionFailure(t *testing.T) {
	cfg := testConfig(t)
	exec := newFakeExecutor()
	exec.results["ffprobe"] = "600.0\n"
	exec.errs["ffmpeg"] = errors.New("ffmpeg exploded")

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "bad.mp4")
	if err := os.WriteFile(videoPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	n := New(cfg, exec, logger.New("error"))
	_, err := n.Normalize(context.Background(), videoPath)
	if !apperr.IsKind(err, apperr.KindExtractionFailed) {
		t.Fatalf("Normalize() error kind = %v, want ExtractionFailed", apperr.KindOf(err))
	}
}

func TestCapSeconds(t *testing.T) {
	tests := []struct {
		max, actual, want float64
	}{
		{1200, 1800, 1200},
		{1200, 1200, 1200},
		{1200, 600, 600},
		{1200, 0, 0},
	}

	for _, tt := range tests {
		if got := CapSeconds(tt.max, tt.actual); got != tt.want {
			t.Errorf("CapSeconds(%v, %v) = %v, want %v", tt.max, tt.actual, got, tt.want)
		}
	}
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
