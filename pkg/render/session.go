package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SessionOptions configures a render session.
type SessionOptions struct {
	// Route identifies the page being rendered. Used in errors and logs.
	Route string

	// CompressHTML drops the newline after the inserted doctype and the
	// whitespace between generated head tags.
	CompressHTML bool

	// Partial marks a fragment render: no doctype is inserted.
	Partial bool

	// Logger is the base logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives render lifecycle callbacks. Defaults to a no-op.
	Observer Observer
}

// Session is the per-render context shared by every nested component.
//
// It is safe for concurrent use: siblings rendered through a
// BufferedRenderer append head fragments and check cancellation from their
// own goroutines.
type Session struct {
	id           string
	route        string
	compressHTML bool
	partial      bool
	logger       *slog.Logger
	observer     Observer

	ctx       context.Context
	cancel    context.CancelCauseFunc
	cancelled atomic.Bool

	mu          sync.Mutex
	extraHead   []string
	propagators []Propagator
	err         error
}

// NewSession creates a session bound to ctx. The session is cancelled when
// ctx is done or Cancel is called.
func NewSession(ctx context.Context, opts SessionOptions) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancelCause(ctx)

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	return &Session{
		id:           id,
		route:        opts.Route,
		compressHTML: opts.CompressHTML,
		partial:      opts.Partial,
		logger:       logger.With("component", "ssr", "render_id", id, "route", opts.Route),
		observer:     observer,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ID returns the unique render identifier.
func (s *Session) ID() string { return s.id }

// Route returns the route this session renders.
func (s *Session) Route() string { return s.route }

// CompressHTML reports whether whitespace should be minimized.
func (s *Session) CompressHTML() bool { return s.compressHTML }

// Partial reports whether this is a fragment render.
func (s *Session) Partial() bool { return s.partial }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Context returns a context that is done once the session is cancelled.
// Components doing I/O should pass it along.
func (s *Session) Context() context.Context { return s.ctx }

// Done returns a channel closed on cancellation.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Cancel marks the session cancelled. It is idempotent and the flag is
// never reset.
func (s *Session) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.cancel(ErrRenderCancelled)
		s.logger.Debug("render cancelled")
	}
}

// Close releases the session context once rendering is over. Unlike
// Cancel it is not logged as a cancellation. Components must not use the
// session after Close.
func (s *Session) Close() {
	s.cancel(ErrRenderCancelled)
}

// Cancelled reports whether the session was cancelled, either explicitly or
// because the parent context ended.
func (s *Session) Cancelled() bool {
	if s.cancelled.Load() {
		return true
	}
	if s.ctx.Err() != nil {
		s.cancelled.Store(true)
		return true
	}
	return false
}

// Fail records a render failure. Only the first failure is kept; templates
// observe it through Err and stop rendering.
func (s *Session) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Err returns the recorded failure, a cancellation error, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if !s.Cancelled() {
		return nil
	}
	cause := context.Cause(s.ctx)
	if cause == nil || errors.Is(cause, ErrRenderCancelled) {
		return ErrRenderCancelled
	}
	return fmt.Errorf("%w: %w", ErrRenderCancelled, cause)
}

// AppendHead adds a fragment to the propagated head content.
func (s *Session) AppendHead(fragment string) {
	s.mu.Lock()
	s.extraHead = append(s.extraHead, fragment)
	s.mu.Unlock()
}

// ExtraHead returns a copy of the propagated head fragments in insertion
// order.
func (s *Session) ExtraHead() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.extraHead))
	copy(out, s.extraHead)
	return out
}

// AddPropagator registers a component whose initialization must complete
// before the page body streams.
func (s *Session) AddPropagator(p Propagator) {
	s.mu.Lock()
	s.propagators = append(s.propagators, p)
	s.mu.Unlock()
}

// propagatorAt returns the i-th registered propagator. Reading by index
// lets BufferHeadContent see propagators registered while it runs.
func (s *Session) propagatorAt(i int) (Propagator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.propagators) {
		return nil, false
	}
	return s.propagators[i], true
}
