package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindUnsupportedFormat    Kind = "UNSUPPORTED_FORMAT"
	KindSourceNotFound       Kind = "SOURCE_NOT_FOUND"
	KindExtractionFailed     Kind = "EXTRACTION_FAILED"
	KindMissingCredential    Kind = "MISSING_CREDENTIAL"
	KindTranscriptionFailed  Kind = "TRANSCRIPTION_FAILED"
	KindAuthenticationFailed Kind = "AUTHENTICATION_FAILED"
	KindModelLoadFailed      Kind = "MODEL_LOAD_FAILED"
	KindGenerationFailed     Kind = "GENERATION_FAILED"
	KindInvalidArgument      Kind = "INVALID_ARGUMENT"
	KindInternal             Kind = "INTERNAL"
)

// Error is the unified error contract across pipeline stages.
// Message is safe to show to a caller; Err carries the wrapped cause.
type Error struct {
	Kind    Kind
	Stage   string // pipeline stage, ex: "transcribe"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Stage != "" && e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	case e.Stage != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	case e.Stage != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a typed error.
func E(kind Kind, stage, msg string, err error) error {
	return &Error{Kind: kind, Stage: stage, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// UserMessage returns a short caller-facing description with no backend
// stack traces. Unknown errors collapse to a generic retry hint.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case KindUnsupportedFormat:
			return "Unsupported file type. Please upload an audio or video file."
		case KindSourceNotFound:
			return "The uploaded file could not be opened. Please try again."
		case KindMissingCredential:
			return "A required API key is missing. Please provide it and try again."
		case KindAuthenticationFailed:
			return "Model registry login failed. Check your registry token and try again."
		default:
			if ae.Stage != "" {
				return fmt.Sprintf("Processing failed during %s. Please try again.", ae.Stage)
			}
		}
	}
	return "An error occurred while processing the file. Please try again."
}

func HTTPStatus(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case KindUnsupportedFormat, KindInvalidArgument:
			return http.StatusBadRequest
		case KindSourceNotFound:
			return http.StatusNotFound
		case KindMissingCredential, KindAuthenticationFailed:
			return http.StatusUnauthorized
		case KindTranscriptionFailed, KindGenerationFailed:
			return http.StatusBadGateway
		case KindModelLoadFailed:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
