package ai

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork               = errors.New("model request failed")
	ErrSchemaValidation      = errors.New("model response does not match schema")
	ErrEmptyInput            = errors.New("empty input")
	ErrPermissionDenied      = errors.New("audio capture permission denied")
	ErrUnsupportedCapability = errors.New("unsupported audio capability")
)

// Errorf wraps kind with a formatted context message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns a short label of the taxonomy entry err belongs to.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrUnsupportedCapability):
		return "unsupported_capability"
	case errors.Is(err, ErrSchemaValidation):
		return "schema_validation"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}

// UserMessage maps an audio pipeline error to an actionable message.
func UserMessage(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case "permission_denied":
		return "Microphone permission was denied. Please allow audio access and try again."
	case "unsupported_capability":
		return "Audio recording is not supported here: no compatible recording format is available."
	case "empty_input":
		return "Nothing was recorded. Please speak for a few seconds and try again."
	default:
		return "AI analysis failed. Check that the API key is valid and try again."
	}
}
