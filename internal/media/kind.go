package media

import (
	"path/filepath"
	"strings"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
)

// Kind is the declared media kind of an upload, inferred from its extension.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

var (
	audioExts = map[string]bool{".wav": true, ".mp3": true, ".m4a": true}
	videoExts = map[string]bool{".mp4": true, ".mov": true}
)

// Classify maps a filename to its media kind. Extensions outside the five
// supported formats are rejected before any file access happens.
func Classify(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case audioExts[ext]:
		return KindAudio, nil
	case videoExts[ext]:
		return KindVideo, nil
	default:
		return "", apperr.E(apperr.KindUnsupportedFormat, "normalize",
			"unsupported file type "+ext, nil)
	}
}

// Supported reports whether the filename carries one of the five
// supported audio/video extensions.
func Supported(path string) bool {
	_, err := Classify(path)
	return err == nil
}
