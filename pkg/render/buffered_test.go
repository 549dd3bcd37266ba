package render

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBufferedRendererKeepsFlushOrder(t *testing.T) {
	var d recordingDestination

	slow := NewBufferedRenderer(&d, func(bd Destination) error {
		time.Sleep(50 * time.Millisecond)
		bd.Write(Text("A"))
		return nil
	})
	fast := NewBufferedRenderer(&d, func(bd Destination) error {
		time.Sleep(5 * time.Millisecond)
		bd.Write(Text("B"))
		return nil
	})

	if err := slow.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := fast.Flush(); err != nil {
		t.Fatal(err)
	}
	if d.String() != "AB" {
		t.Errorf("output = %q, want %q", d.String(), "AB")
	}
}

func TestBufferedRendererRunsEagerly(t *testing.T) {
	started := make(chan struct{})
	b := NewBufferedRenderer(&recordingDestination{}, func(Destination) error {
		close(started)
		return nil
	})
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("render did not start before Flush")
	}
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
}

func TestBufferedRendererWritesAfterFlushPassThrough(t *testing.T) {
	var d recordingDestination
	proceed := make(chan struct{})
	b := NewBufferedRenderer(&d, func(bd Destination) error {
		bd.Write(Text("before"))
		<-proceed
		bd.Write(Text("-after"))
		return nil
	})

	flushed := make(chan error, 1)
	go func() { flushed <- b.Flush() }()

	// Flush replays "before" and then waits for the render to finish.
	deadline := time.After(5 * time.Second)
	for d.String() != "before" {
		select {
		case <-deadline:
			t.Fatalf("buffered chunk not replayed, got %q", d.String())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(proceed)
	if err := <-flushed; err != nil {
		t.Fatal(err)
	}
	if d.String() != "before-after" {
		t.Errorf("output = %q", d.String())
	}
}

func TestBufferedRendererError(t *testing.T) {
	boom := errors.New("boom")
	var d recordingDestination
	b := NewBufferedRenderer(&d, func(bd Destination) error {
		bd.Write(Text("partial"))
		return boom
	})
	if err := b.Flush(); !errors.Is(err, boom) {
		t.Errorf("Flush() = %v, want %v", err, boom)
	}
	if d.String() != "partial" {
		t.Errorf("output = %q", d.String())
	}
}

func TestBufferedRendererPanic(t *testing.T) {
	b := NewBufferedRenderer(&recordingDestination{}, func(Destination) error {
		panic("kaboom")
	})
	err := b.Flush()
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("Flush() = %v, want panic converted to error", err)
	}
}

func TestBufferedRendererFlushTwicePanics(t *testing.T) {
	b := NewBufferedRenderer(&recordingDestination{}, func(Destination) error { return nil })
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("second Flush should panic")
		}
	}()
	b.Flush()
}

func TestSiblingsOverlap(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	var running, peak atomic.Int32
	item := func(label string, delay time.Duration) TemplateResult {
		return TemplateFunc(func(_ *Session, d Destination) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(delay)
			running.Add(-1)
			d.Write(Text(label))
			return nil
		})
	}

	out, _, err := RenderToString(s, Call{Factory: pageOf(Each([]time.Duration{40, 10, 20}, func(i int, ms time.Duration) any {
		return item(string(rune('a'+i)), ms*time.Millisecond)
	}))})
	if err != nil {
		t.Fatal(err)
	}
	if out != "abc" {
		t.Errorf("output = %q, want document order %q", out, "abc")
	}
	if peak.Load() < 2 {
		t.Errorf("peak concurrency = %d, siblings should render concurrently", peak.Load())
	}
}

func TestSiblingErrorStopsRender(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	boom := errors.New("item failed")
	out, _, err := RenderToString(s, Call{Factory: pageOf(Parallel(
		Text("<li>1</li>"),
		TemplateFunc(func(*Session, Destination) error { return boom }),
		Text("<li>3</li>"),
	))})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("session error = %v, want %v", s.Err(), boom)
	}
}
