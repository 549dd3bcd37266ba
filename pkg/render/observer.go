package render

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

// Mode identifies a delivery adapter.
type Mode uint8

const (
	ModeString Mode = iota
	ModeStream
	ModePull
)

// String returns the mode name used in config, logs and metric labels.
func (m Mode) String() string {
	switch m {
	case ModeString:
		return "string"
	case ModeStream:
		return "stream"
	case ModePull:
		return "pull"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "string", "":
		return ModeString, nil
	case "stream":
		return ModeStream, nil
	case "pull":
		return ModePull, nil
	default:
		return 0, ssrerrors.New("E123").WithDetail(fmt.Sprintf("Unknown render mode %q; use string, stream or pull.", s))
	}
}

// Observer receives render lifecycle callbacks. Implementations must be safe
// for concurrent use.
type Observer interface {
	RenderStarted(s *Session, mode Mode)
	ChunkWritten(s *Session, mode Mode, n int)
	RenderFinished(s *Session, mode Mode, err error)
}

// NopObserver ignores all callbacks.
type NopObserver struct{}

func (NopObserver) RenderStarted(*Session, Mode)         {}
func (NopObserver) ChunkWritten(*Session, Mode, int)     {}
func (NopObserver) RenderFinished(*Session, Mode, error) {}

// tracker reports one adapter run to the session's logger and observer.
type tracker struct {
	s      *Session
	mode   Mode
	start  time.Time
	bytes  atomic.Int64
	chunks atomic.Int64
	once   sync.Once
}

func startTracking(s *Session, mode Mode) *tracker {
	t := &tracker{s: s, mode: mode, start: time.Now()}
	s.observer.RenderStarted(s, mode)
	return t
}

func (t *tracker) chunk(n int) {
	t.bytes.Add(int64(n))
	t.chunks.Add(1)
	t.s.observer.ChunkWritten(t.s, t.mode, n)
}

func (t *tracker) finish(err error) {
	t.once.Do(func() {
		attrs := []any{
			"mode", t.mode.String(),
			"duration", time.Since(t.start),
			"bytes", t.bytes.Load(),
			"chunks", t.chunks.Load(),
		}
		if err != nil {
			t.s.logger.Warn("render failed", append(attrs, "error", err)...)
		} else {
			t.s.logger.Debug("render finished", attrs...)
		}
		t.s.observer.RenderFinished(t.s, t.mode, err)
	})
}
