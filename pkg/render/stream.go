package render

import (
	"io"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
)

// Controller is the push side of a byte stream, provided by the transport.
type Controller interface {
	// Enqueue delivers one encoded chunk.
	Enqueue(chunk []byte)
	// Close ends the stream successfully.
	Close()
	// Error ends the stream with err.
	Error(err error)
}

// Stream is a lazily started byte stream of a rendered page.
type Stream struct {
	s      *Session
	result TemplateResult
	isPage bool
	route  string
	track  *tracker

	started atomic.Bool

	// mu orders destination writes with Cancel.
	mu sync.Mutex
}

// RenderToStream resolves a call and returns a stream that renders it once
// started. Variant resolution and head propagation happen before it
// returns, so a *Response or a propagation error is reported here and no
// stream is created.
func RenderToStream(s *Session, c Call) (*Stream, *Response, error) {
	t := startTracking(s, ModeStream)

	result, resp, err := prepare(s, c)
	if err != nil {
		t.finish(err)
		return nil, nil, err
	}
	if resp != nil {
		t.finish(nil)
		return nil, resp, nil
	}
	return &Stream{
		s:      s,
		result: result,
		isPage: c.IsPage,
		route:  c.route(s),
		track:  t,
	}, nil, nil
}

// Session returns the session the stream renders with.
func (st *Stream) Session() *Session { return st.s }

// Start schedules rendering into c. It must be called once.
//
// Exactly one of c.Close or c.Error is called when rendering ends, unless
// the stream was cancelled; after cancellation c is not called again.
func (st *Stream) Start(c Controller) {
	if !st.started.CompareAndSwap(false, true) {
		panic("render: Stream.Start called twice")
	}
	go st.run(c)
}

// Cancel stops the stream. Chunks already enqueued are kept. Cancel may be
// called from inside Controller.Enqueue, in which case the rest of the
// current chunk is not enqueued. Only a write already in progress on
// another goroutine can still reach the controller.
func (st *Stream) Cancel() {
	// A held lock means a write is in progress, possibly the caller's own
	// Enqueue; the write path re-checks before every Enqueue.
	if st.mu.TryLock() {
		defer st.mu.Unlock()
	}
	st.s.Cancel()
}

func (st *Stream) run(c Controller) {
	s := st.s
	start := pageStart{s: s, isPage: st.isPage}

	// enqueue runs with st.mu held. Enqueue may cancel the session, so
	// the flag is checked before every call, not once per chunk.
	enqueue := func(b []byte) {
		if len(b) == 0 || s.Cancelled() {
			return
		}
		c.Enqueue(b)
		st.track.chunk(len(b))
	}
	dest := DestinationFunc(func(chunk Chunk) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if s.Err() != nil {
			return
		}
		if p := start.prefix(chunk); p != "" {
			enqueue([]byte(p))
		}
		if _, ok := chunk.(*Response); ok {
			s.Fail(responseSentError(st.route))
			return
		}
		enqueue(chunkBytes(chunk))
	})

	err := st.result.Render(s, dest)
	if err == nil {
		err = s.Err()
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s.Cancelled() {
		st.track.finish(s.Err())
		return
	}
	if err != nil {
		// Let the transport drain what was enqueued before it sees the fault.
		runtime.Gosched()
		c.Error(err)
		st.track.finish(err)
		return
	}
	c.Close()
	st.track.finish(nil)
}

// WriteTo starts the stream and copies it to w, flushing after every chunk
// when w is an http.Flusher. A write error cancels the stream. WriteTo
// returns when the stream closes, fails, or the session is cancelled.
func (st *Stream) WriteTo(w io.Writer) (int64, error) {
	wc := newWriterController(w, st.Cancel)
	st.Start(wc)

	select {
	case err := <-wc.done:
		return wc.close(), err
	case <-st.s.Done():
	}
	// A failed write cancels the session after recording its error.
	select {
	case err := <-wc.done:
		return wc.close(), err
	default:
		return wc.close(), st.s.Err()
	}
}

// writerController adapts an io.Writer to Controller.
type writerController struct {
	w       io.Writer
	flusher http.Flusher
	cancel  func()

	mu     sync.Mutex
	n      int64
	closed bool
	once   sync.Once
	done   chan error
}

func newWriterController(w io.Writer, cancel func()) *writerController {
	flusher, _ := w.(http.Flusher)
	return &writerController{
		w:       w,
		flusher: flusher,
		cancel:  cancel,
		done:    make(chan error, 1),
	}
}

func (wc *writerController) Enqueue(chunk []byte) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.closed {
		return
	}
	n, err := wc.w.Write(chunk)
	wc.n += int64(n)
	if err != nil {
		wc.closed = true
		wc.finish(err)
		wc.cancel()
		return
	}
	if wc.flusher != nil {
		wc.flusher.Flush()
	}
}

func (wc *writerController) Close() { wc.finish(nil) }

func (wc *writerController) Error(err error) { wc.finish(err) }

func (wc *writerController) finish(err error) {
	wc.once.Do(func() { wc.done <- err })
}

// close stops further writes to w and returns the byte count.
func (wc *writerController) close() int64 {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.closed = true
	return wc.n
}
