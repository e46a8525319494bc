package audio

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/alumni-matcher/internal/ai"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	fire    chan time.Time
	limited time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0), fire: make(chan time.Time, 1)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limited = d
	return c.fire
}

func (c *fakeClock) expire() {
	c.mu.Lock()
	c.now = c.now.Add(c.limited)
	c.mu.Unlock()
	c.fire <- c.Now()
}

func TestRecorderStopsAtEOF(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rec := &Recorder{Clock: clock, MIMEType: "audio/webm", ChunkSize: 4}

	clip, err := rec.Record(context.Background(), bytes.NewReader([]byte("voice-sample")), nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("voice-sample"), clip.Data)
	assert.Equal(t, "audio/webm", clip.MIMEType)
	assert.Equal(t, StopEOF, clip.Reason)
	assert.False(t, clip.Truncated)
	assert.Equal(t, DefaultMaxDuration, clock.limited)
}

func TestRecorderEnforcesDurationCap(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rec := &Recorder{Clock: clock, Limit: 10 * time.Second, MIMEType: "audio/ogg"}
	pr, pw := io.Pipe()

	type result struct {
		clip *Clip
		err  error
	}
	results := make(chan result, 1)
	go func() {
		clip, err := rec.Record(context.Background(), pr, nil)
		results <- result{clip, err}
	}()

	// the second write only returns once the first chunk has been handed over
	_, err := pw.Write([]byte("first"))
	require.NoError(t, err)
	_, err = pw.Write([]byte("second"))
	require.NoError(t, err)

	clock.expire()

	res := <-results
	require.NoError(t, res.err)
	assert.True(t, bytes.HasPrefix(res.clip.Data, []byte("first")))
	assert.Equal(t, StopLimit, res.clip.Reason)
	assert.True(t, res.clip.Truncated)
	assert.Equal(t, 10*time.Second, res.clip.Duration)

	_, err = pw.Write([]byte("late"))
	assert.ErrorIs(t, err, io.ErrClosedPipe, "source is closed once the clip is finalized")
}

func TestRecorderManualStop(t *testing.T) {
	t.Parallel()

	stop := make(chan struct{})
	rec := &Recorder{Clock: newFakeClock(), MIMEType: "audio/mp4"}
	pr, pw := io.Pipe()

	done := make(chan *Clip, 1)
	go func() {
		clip, err := rec.Record(context.Background(), pr, stop)
		assert.NoError(t, err)
		done <- clip
	}()

	_, err := pw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = pw.Write([]byte("world"))
	require.NoError(t, err)
	close(stop)

	clip := <-done
	require.NotNil(t, clip)
	assert.Equal(t, StopManual, clip.Reason)
	assert.False(t, clip.Truncated)
	assert.True(t, bytes.HasPrefix(clip.Data, []byte("hello")))
}

// stuckReader delivers one chunk and then blocks in Read like an idle terminal.
type stuckReader struct {
	once    sync.Once
	release chan struct{}
}

func (r *stuckReader) Read(p []byte) (int, error) {
	first := false
	r.once.Do(func() { first = true })
	if first {
		return copy(p, "hello"), nil
	}
	<-r.release
	return 0, io.EOF
}

func TestRecorderReturnsWhileSourceBlocks(t *testing.T) {
	t.Parallel()

	src := &stuckReader{release: make(chan struct{})}
	defer close(src.release)

	clock := newFakeClock()
	rec := &Recorder{Clock: clock, MIMEType: "audio/webm"}

	done := make(chan *Clip, 1)
	go func() {
		clip, err := rec.Record(context.Background(), src, nil)
		assert.NoError(t, err)
		done <- clip
	}()

	// let the first chunk arrive before the cap fires
	require.Eventually(t, func() bool {
		clock.mu.Lock()
		defer clock.mu.Unlock()
		return clock.limited > 0
	}, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	clock.expire()

	select {
	case clip := <-done:
		require.NotNil(t, clip)
		assert.Equal(t, StopLimit, clip.Reason)
		assert.Equal(t, []byte("hello"), clip.Data)
	case <-time.After(time.Second):
		t.Fatal("Record waited for a blocked Read")
	}
}

func TestRecorderCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &Recorder{Clock: newFakeClock()}
	pr, _ := io.Pipe()

	errs := make(chan error, 1)
	go func() {
		_, err := rec.Record(ctx, pr, nil)
		errs <- err
	}()
	cancel()

	require.ErrorIs(t, <-errs, context.Canceled)
}

func TestRecorderEmptyClip(t *testing.T) {
	t.Parallel()

	rec := &Recorder{Clock: newFakeClock(), MIMEType: "audio/webm"}
	_, err := rec.Record(context.Background(), bytes.NewReader(nil), nil)
	require.ErrorIs(t, err, ai.ErrEmptyInput)
}

func TestRecorderSniffsType(t *testing.T) {
	t.Parallel()

	rec := &Recorder{Clock: newFakeClock()}
	clip, err := rec.Record(context.Background(), bytes.NewReader(oggOpusHeader()), nil)
	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", clip.MIMEType)
}

func TestOpenPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}

	path := filepath.Join(t.TempDir(), "clip.webm")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o000))

	_, err := Open(path)
	require.ErrorIs(t, err, ai.ErrPermissionDenied)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.webm"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrPermissionDenied)
}
