package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
)

// Normalize inspects the input by extension and returns a path to decodable
// audio. Audio files are returned unchanged. Video files get their audio
// track extracted to 16kHz mono WAV, truncated to the configured maximum
// duration or the source duration, whichever is shorter.
func (n *implNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	kind, err := Classify(inputPath)
	if err != nil {
		return "", err
	}

	if kind == KindAudio {
		n.logger.Info(ctx, "Using uploaded audio file directly: %s", inputPath)
		return inputPath, nil
	}

	return n.extractAudio(ctx, inputPath)
}

// extractAudio pulls the audio track out of a video file.
// 16kHz mono PCM is the format transcription backends handle best.
func (n *implNormalizer) extractAudio(ctx context.Context, videoPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", apperr.E(apperr.KindSourceNotFound, "normalize",
			"input video file not found", err)
	}

	maxSeconds := float64(n.cfg.MaxDurationSeconds())

	actual, err := n.probeDuration(ctx, videoPath)
	if err != nil {
		return "", apperr.E(apperr.KindExtractionFailed, "normalize",
			"could not read video duration", err)
	}

	capSeconds := CapSeconds(maxSeconds, actual)
	if actual > maxSeconds {
		n.logger.Warn(ctx, "Video is %.0fs, extracting only the first %.0fs", actual, capSeconds)
	}

	if err := os.MkdirAll(n.cfg.Paths.Temp, 0755); err != nil {
		return "", apperr.E(apperr.KindExtractionFailed, "normalize",
			"could not create temp directory", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(n.cfg.Paths.Temp, base+"_audio_16k.wav")

	n.logger.Info(ctx, "Extracting audio (first %.0fs): %s", capSeconds, videoPath)

	// -vn: drop video
	// -ac 1 / -ar 16000: mono 16kHz
	// -t: stop after the duration cap
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(n.cfg.Media.SampleRate),
		"-c:a", "pcm_s16le",
		"-t", formatSeconds(capSeconds),
		audioPath,
	}

	if _, err := n.executor.Execute(ctx, n.cfg.Media.FFmpegPath, args...); err != nil {
		n.removePartial(ctx, audioPath)
		return "", apperr.E(apperr.KindExtractionFailed, "normalize",
			"audio extraction failed", err)
	}

	n.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}

// probeDuration asks ffprobe for the container duration in seconds.
func (n *implNormalizer) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := n.executor.Execute(ctx, n.cfg.Media.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(out), err)
	}
	return dur, nil
}

// removePartial drops a half-written extraction artifact. A cleanup failure
// is logged but never masks the extraction error.
func (n *implNormalizer) removePartial(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		n.logger.Warn(ctx, "Failed to cleanup partial audio file %s: %v", path, err)
	}
}

// CapSeconds returns min(maxSeconds, actualSeconds).
func CapSeconds(maxSeconds, actualSeconds float64) float64 {
	if actualSeconds < maxSeconds {
		return actualSeconds
	}
	return maxSeconds
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
