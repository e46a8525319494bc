package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/alumni-matcher/internal/ai"
	"github.com/spigell/alumni-matcher/internal/utils"
)

// DefaultMaxDuration caps a single recording.
const DefaultMaxDuration = 10 * time.Second

const defaultChunkSize = 32 * 1024

// StopReason tells why a recording ended.
type StopReason string

const (
	StopEOF    StopReason = "eof"
	StopManual StopReason = "stopped"
	StopLimit  StopReason = "limit"
)

// Clip is a finalized recording.
type Clip struct {
	Data      []byte
	MIMEType  string
	Duration  time.Duration
	Reason    StopReason
	Truncated bool
}

// Recorder captures audio from a source until EOF, an explicit stop or the
// duration cap.
type Recorder struct {
	// Limit defaults to DefaultMaxDuration.
	Limit time.Duration
	// Clock defaults to utils.SystemClock.
	Clock utils.Clock
	// MIMEType is the negotiated container; empty means sniff the data.
	MIMEType  string
	ChunkSize int
}

type chunk struct {
	data []byte
	err  error
}

// Record returns the finalized clip exactly once. Cancelling ctx aborts the
// recording and discards what was captured. A source implementing io.Closer is
// closed before Record returns.
func (r *Recorder) Record(ctx context.Context, src io.Reader, stop <-chan struct{}) (*Clip, error) {
	if src == nil {
		return nil, ai.Errorf(ai.ErrUnsupportedCapability, "no capture source")
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	clock := r.Clock
	if clock == nil {
		clock = utils.SystemClock()
	}
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultMaxDuration
	}
	size := r.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}

	done := make(chan struct{})
	defer close(done)

	chunks := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, size)
			n, err := src.Read(buf)
			select {
			case chunks <- chunk{data: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	started := clock.Now()
	deadline := clock.After(limit)

	var data []byte
	reason := StopEOF

loop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			reason = StopManual
			break loop
		case <-deadline:
			reason = StopLimit
			break loop
		case c := <-chunks:
			data = append(data, c.data...)
			if c.err == nil {
				continue
			}
			if errors.Is(c.err, io.EOF) {
				break loop
			}
			if errors.Is(c.err, fs.ErrPermission) {
				return nil, ai.Errorf(ai.ErrPermissionDenied, "read capture source: %v", c.err)
			}
			return nil, ai.Errorf(ai.ErrUnsupportedCapability, "read capture source: %v", c.err)
		}
	}

	if len(data) == 0 {
		return nil, ai.Errorf(ai.ErrEmptyInput, "nothing was recorded")
	}

	mimeType, err := Detect(data, r.MIMEType)
	if err != nil {
		return nil, err
	}

	return &Clip{
		Data:      data,
		MIMEType:  mimeType,
		Duration:  clock.Now().Sub(started),
		Reason:    reason,
		Truncated: reason == StopLimit,
	}, nil
}

// Open opens a capture source. "-" means standard input. Standard input cannot
// be interrupted, so after a stop or the duration cap the reading goroutine
// stays parked in Read until the next chunk or process exit. Record itself
// returns without waiting for it.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ai.Errorf(ai.ErrPermissionDenied, "open %s: %v", path, err)
		}
		return nil, fmt.Errorf("open capture source: %w", err)
	}
	return f, nil
}
