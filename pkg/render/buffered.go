package render

import (
	"fmt"
	"sync"
)

// BufferedRenderer renders a subtree ahead of its turn.
//
// The render function starts immediately in its own goroutine and writes
// into a private buffer, so it does not wait on the real destination. Flush
// replays the buffer into the real destination and routes any later writes
// straight through, which keeps document order equal to flush order no
// matter which subtree finishes first.
type BufferedRenderer struct {
	dest Destination

	mu      sync.Mutex
	chunks  []Chunk
	flushed bool

	done chan struct{}
	err  error
}

// NewBufferedRenderer starts fn with a private destination. An error
// returned by fn is held until Flush.
func NewBufferedRenderer(dest Destination, fn func(d Destination) error) *BufferedRenderer {
	b := &BufferedRenderer{
		dest: dest,
		done: make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		defer func() {
			if r := recover(); r != nil {
				b.err = fmt.Errorf("render: panic in buffered render: %v", r)
			}
		}()
		b.err = fn(DestinationFunc(b.write))
	}()
	return b
}

func (b *BufferedRenderer) write(c Chunk) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flushed {
		b.dest.Write(c)
		return
	}
	b.chunks = append(b.chunks, c)
}

// Flush writes the buffered chunks to the real destination, waits for the
// render to finish and returns its error. Calling Flush twice panics.
func (b *BufferedRenderer) Flush() error {
	b.mu.Lock()
	if b.flushed {
		b.mu.Unlock()
		panic("render: BufferedRenderer.Flush called twice")
	}
	b.flushed = true
	for _, c := range b.chunks {
		b.dest.Write(c)
	}
	b.chunks = nil
	b.mu.Unlock()

	<-b.done
	return b.err
}
