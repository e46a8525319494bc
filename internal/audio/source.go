package audio

import (
	"bytes"
	"errors"
	"io"
	"io/fs"

	"github.com/spigell/alumni-matcher/internal/ai"
)

// probeSize covers the container signatures of webm, mp4 and ogg.
const probeSize = 512

// Source is a capture source whose container has been negotiated. Reading it
// replays the probed head before the rest of the underlying stream.
type Source struct {
	io.Reader
	closer io.Closer

	// MIMEType is the negotiated container.
	MIMEType string
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Prepare finds the container src produces and negotiates it against formats
// before anything is recorded. A declared type is trusted; otherwise the first
// bytes of src are sniffed. When no format matches, src is closed and
// ErrUnsupportedCapability is returned.
func Prepare(src io.ReadCloser, declared string, formats []string) (*Source, error) {
	if src == nil {
		return nil, ai.Errorf(ai.ErrUnsupportedCapability, "no capture source")
	}

	var head []byte
	container := canonical(BaseType(declared))
	if container == "" {
		buf := make([]byte, probeSize)
		n, err := io.ReadFull(src, buf)
		switch {
		case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		case errors.Is(err, io.EOF):
			src.Close()
			return nil, ai.Errorf(ai.ErrEmptyInput, "nothing was recorded")
		case errors.Is(err, fs.ErrPermission):
			src.Close()
			return nil, ai.Errorf(ai.ErrPermissionDenied, "probe capture source: %v", err)
		default:
			src.Close()
			return nil, ai.Errorf(ai.ErrUnsupportedCapability, "probe capture source: %v", err)
		}
		head = buf[:n]

		if container, err = Detect(head, ""); err != nil {
			src.Close()
			return nil, err
		}
	}

	format, err := Negotiate(func(f string) bool { return BaseType(f) == container }, formats...)
	if err != nil {
		src.Close()
		return nil, ai.Errorf(ai.ErrUnsupportedCapability, "source produces %s: %v", container, err)
	}

	return &Source{
		Reader:   io.MultiReader(bytes.NewReader(head), src),
		closer:   src,
		MIMEType: format,
	}, nil
}

func canonical(base string) string {
	if alias, ok := containerAliases[base]; ok {
		return alias
	}
	return base
}
