package render

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestSessionDefaults(t *testing.T) {
	s := NewSession(context.Background(), SessionOptions{Route: "/about"})
	defer s.Cancel()

	if s.ID() == "" {
		t.Error("ID() should not be empty")
	}
	if s.Route() != "/about" {
		t.Errorf("Route() = %q", s.Route())
	}
	if s.Logger() == nil {
		t.Error("Logger() should default to slog.Default")
	}
	if s.Cancelled() || s.Err() != nil {
		t.Error("new session should not be cancelled")
	}
	if len(s.ExtraHead()) != 0 || len(s.registeredPropagators()) != 0 {
		t.Error("new session should have no head content or propagators")
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := newTestSession(t, SessionOptions{})
	b := newTestSession(t, SessionOptions{})
	if a.ID() == b.ID() {
		t.Errorf("two sessions share ID %q", a.ID())
	}
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	s.Cancel()
	s.Cancel()

	if !s.Cancelled() {
		t.Fatal("Cancelled() = false after Cancel")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("Done() not closed after Cancel")
	}
	if !errors.Is(s.Err(), ErrRenderCancelled) {
		t.Errorf("Err() = %v, want ErrRenderCancelled", s.Err())
	}
}

func TestSessionParentContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(ctx, SessionOptions{})
	cancel()

	<-s.Done()
	if !s.Cancelled() {
		t.Fatal("session should be cancelled with its parent context")
	}
	err := s.Err()
	if !errors.Is(err, ErrRenderCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("Err() = %v, want ErrRenderCancelled wrapping context.Canceled", err)
	}
}

func TestSessionFailKeepsFirst(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	first := errors.New("first")
	s.Fail(nil)
	s.Fail(first)
	s.Fail(errors.New("second"))

	if s.Err() != first {
		t.Errorf("Err() = %v, want %v", s.Err(), first)
	}
	if s.Cancelled() {
		t.Error("Fail should not cancel the session")
	}
}

func TestSessionExtraHeadIsCopy(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	s.AppendHead("<a>")
	s.AppendHead("<b>")

	got := s.ExtraHead()
	got[0] = "changed"
	if s.ExtraHead()[0] != "<a>" {
		t.Error("ExtraHead should return a copy")
	}
}

func TestSessionConcurrentAppend(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendHead("x")
			s.AddPropagator(PropagatorFunc(func(*Session) (any, error) { return nil, nil }))
		}()
	}
	wg.Wait()
	if len(s.ExtraHead()) != 50 || len(s.registeredPropagators()) != 50 {
		t.Errorf("got %d fragments and %d propagators, want 50 each",
			len(s.ExtraHead()), len(s.registeredPropagators()))
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeString, ModeStream, ModePull} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("websocket"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}
