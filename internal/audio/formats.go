package audio

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spigell/alumni-matcher/internal/ai"
)

// DefaultFormats lists the recording containers in order of preference.
var DefaultFormats = []string{"audio/webm", "audio/mp4", "audio/ogg"}

// sniffed container types that carry audio under a different top-level type.
var containerAliases = map[string]string{
	"video/webm":      "audio/webm",
	"video/mp4":       "audio/mp4",
	"audio/x-m4a":     "audio/mp4",
	"application/ogg": "audio/ogg",
}

// BaseType strips parameters (such as codecs) and lowercases a MIME type.
func BaseType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		return base
	}
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Supported reports whether mimeType is one of formats, comparing base types only.
func Supported(mimeType string, formats []string) (string, bool) {
	base := BaseType(mimeType)
	if base == "" {
		return "", false
	}
	for _, format := range formats {
		if BaseType(format) == base {
			return base, true
		}
	}
	return base, false
}

// Negotiate returns the first preferred container the capture environment can
// produce. An empty preference list means DefaultFormats.
func Negotiate(capable func(string) bool, preferred ...string) (string, error) {
	if len(preferred) == 0 {
		preferred = DefaultFormats
	}
	if capable == nil {
		return "", ai.Errorf(ai.ErrUnsupportedCapability, "no recording capability")
	}
	for _, format := range preferred {
		if capable(format) {
			return BaseType(format), nil
		}
	}
	return "", ai.Errorf(ai.ErrUnsupportedCapability, "none of %s can be recorded", strings.Join(preferred, ", "))
}

// Detect resolves the MIME type of a clip. A declared type wins; otherwise the
// content is sniffed.
func Detect(data []byte, declared string) (string, error) {
	if base := BaseType(declared); base != "" {
		return base, nil
	}
	if len(data) == 0 {
		return "", ai.Errorf(ai.ErrEmptyInput, "audio clip is empty")
	}

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		name := BaseType(m.String())
		if alias, ok := containerAliases[name]; ok {
			return alias, nil
		}
		if strings.HasPrefix(name, "audio/") {
			return name, nil
		}
	}
	return "", ai.Errorf(ai.ErrUnsupportedCapability, "content is not a recognised audio container (%s)", mimetype.Detect(data).String())
}
