package render

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func newTestSession(t *testing.T, opts SessionOptions) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Route == "" {
		opts.Route = "/test"
	}
	s := NewSession(context.Background(), opts)
	t.Cleanup(s.Cancel)
	return s
}

// pageOf returns a factory that renders parts as a template.
func pageOf(parts ...any) Factory {
	return func(*Session, Props, Slots) (any, error) {
		return Template(parts...), nil
	}
}

// valueOf returns a factory that returns v unchanged.
func valueOf(v any) Factory {
	return func(*Session, Props, Slots) (any, error) {
		return v, nil
	}
}

// recordingDestination collects chunks as strings.
type recordingDestination struct {
	mu     sync.Mutex
	chunks []string
}

func (r *recordingDestination) Write(c Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch v := c.(type) {
	case *Response:
		r.chunks = append(r.chunks, "<response>")
	default:
		r.chunks = append(r.chunks, string(chunkBytes(v)))
	}
}

func (r *recordingDestination) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.chunks, "")
}

// recordingController records every controller call in order.
type recordingController struct {
	mu     sync.Mutex
	events []string
	err    error
	done   chan struct{}
	once   sync.Once
}

func newRecordingController() *recordingController {
	return &recordingController{done: make(chan struct{})}
}

func (c *recordingController) Enqueue(chunk []byte) {
	c.mu.Lock()
	c.events = append(c.events, "enqueue:"+string(chunk))
	c.mu.Unlock()
}

func (c *recordingController) Close() {
	c.mu.Lock()
	c.events = append(c.events, "close")
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
}

func (c *recordingController) Error(err error) {
	c.mu.Lock()
	c.events = append(c.events, "error")
	c.err = err
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
}

func (c *recordingController) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

// body concatenates all enqueued chunks.
func (c *recordingController) body() string {
	var b strings.Builder
	for _, e := range c.snapshot() {
		if rest, ok := strings.CutPrefix(e, "enqueue:"); ok {
			b.WriteString(rest)
		}
	}
	return b.String()
}

// cancellingController cancels its stream from inside the first Enqueue.
type cancellingController struct {
	*recordingController
	st *Stream
}

func (c *cancellingController) Enqueue(chunk []byte) {
	c.recordingController.Enqueue(chunk)
	c.st.Cancel()
}

// finishObserver closes done when the render finishes.
type finishObserver struct {
	NopObserver
	done chan struct{}
}

func (o finishObserver) RenderFinished(*Session, Mode, error) { close(o.done) }

// failingWriter fails every write after the first n bytes.
type failingWriter struct {
	n   int
	err error
	buf strings.Builder
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.n {
		return 0, w.err
	}
	return w.buf.Write(p)
}

// gate is a template that blocks until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
	markup  string
}

func newGate(markup string) *gate {
	return &gate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		markup:  markup,
	}
}

func (g *gate) Render(s *Session, d Destination) error {
	close(g.entered)
	select {
	case <-g.release:
	case <-s.Done():
		return s.Err()
	}
	d.Write(Text(g.markup))
	return nil
}

// registeredPropagators returns a copy of the registered propagators.
func (s *Session) registeredPropagators() []Propagator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Propagator, len(s.propagators))
	copy(out, s.propagators)
	return out
}
