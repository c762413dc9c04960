package transcribe

import "context"

// Backend is a pluggable speech-to-text backend. It converts a decodable
// audio file into plain transcript text.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
