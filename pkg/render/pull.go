package render

import (
	"context"
	"io"
	"iter"
	"net/http"
	"sync"
)

// Iterator is a pull-based byte sequence of a rendered page. Rendering runs
// ahead in the background; Next hands over everything produced since the
// previous call.
type Iterator struct {
	s     *Session
	track *tracker

	mu       sync.Mutex
	buf      [][]byte
	complete bool
	err      error
	reported bool

	// wake holds at most one pending signal. Producers never block on it
	// and a consumer never misses one, because state is checked under mu
	// before waiting.
	wake chan struct{}
}

// RenderToIterator resolves a call and starts rendering it in the
// background. A *Response or a resolution error is reported here and no
// iterator is created.
func RenderToIterator(s *Session, c Call) (*Iterator, *Response, error) {
	t := startTracking(s, ModePull)

	result, resp, err := prepare(s, c)
	if err != nil {
		t.finish(err)
		return nil, nil, err
	}
	if resp != nil {
		t.finish(nil)
		return nil, resp, nil
	}

	it := &Iterator{
		s:     s,
		track: t,
		wake:  make(chan struct{}, 1),
	}
	go it.run(result, c.IsPage, c.route(s))
	return it, nil, nil
}

// Session returns the session the iterator renders with.
func (it *Iterator) Session() *Session { return it.s }

func (it *Iterator) run(result TemplateResult, isPage bool, route string) {
	s := it.s
	start := pageStart{s: s, isPage: isPage}

	var mu sync.Mutex
	dest := DestinationFunc(func(chunk Chunk) {
		mu.Lock()
		defer mu.Unlock()
		if s.Err() != nil {
			return
		}
		if p := start.prefix(chunk); p != "" {
			it.push([]byte(p))
		}
		if _, ok := chunk.(*Response); ok {
			s.Fail(responseSentError(route))
			return
		}
		if b := chunkBytes(chunk); len(b) > 0 {
			it.push(append([]byte(nil), b...))
		}
	})

	err := result.Render(s, dest)
	if err == nil {
		err = s.Err()
	}

	it.mu.Lock()
	it.complete = true
	it.err = err
	it.mu.Unlock()
	it.signal()
	it.track.finish(err)
}

func (it *Iterator) push(b []byte) {
	if it.s.Cancelled() {
		return
	}
	it.mu.Lock()
	it.buf = append(it.buf, b)
	it.mu.Unlock()
	it.track.chunk(len(b))
	it.signal()
}

func (it *Iterator) signal() {
	select {
	case it.wake <- struct{}{}:
	default:
	}
}

// Next returns the bytes rendered since the previous call, concatenated.
// ok is false once the session is cancelled, or once rendering finished
// and every byte was returned. A render error is returned by the first
// call after rendering finished; ctx bounds the wait only.
func (it *Iterator) Next(ctx context.Context) (block []byte, ok bool, err error) {
	for {
		if it.s.Cancelled() {
			return nil, false, nil
		}

		it.mu.Lock()
		if it.complete && it.err != nil && !it.reported {
			it.reported = true
			it.buf = nil
			err := it.err
			it.mu.Unlock()
			return nil, false, err
		}
		if len(it.buf) > 0 {
			block := concat(it.buf)
			it.buf = nil
			it.mu.Unlock()
			return block, true, nil
		}
		if it.complete {
			it.mu.Unlock()
			return nil, false, nil
		}
		it.mu.Unlock()

		select {
		case <-it.wake:
		case <-it.s.Done():
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Return stops the iterator early, e.g. when the client disconnects. The
// session is cancelled and Next reports done from then on.
func (it *Iterator) Return() {
	it.s.Cancel()
}

// All returns the remaining blocks as a range-over-func sequence. Breaking
// out of the loop calls Return.
func (it *Iterator) All(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			block, ok, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(block, nil) {
				it.Return()
				return
			}
		}
	}
}

// WriteTo pulls every block and writes it to w, flushing after each block
// when w is an http.Flusher. A write error stops the iterator.
func (it *Iterator) WriteTo(w io.Writer) (int64, error) {
	flusher, _ := w.(http.Flusher)
	var total int64
	for block, err := range it.All(it.s.Context()) {
		if err != nil {
			return total, err
		}
		n, werr := w.Write(block)
		total += int64(n)
		if werr != nil {
			it.Return()
			return total, werr
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if it.s.Cancelled() {
		return total, it.s.Err()
	}
	return total, nil
}

func concat(chunks [][]byte) []byte {
	if len(chunks) == 1 {
		return chunks[0]
	}
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
