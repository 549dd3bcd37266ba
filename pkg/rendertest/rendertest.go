package rendertest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/ssr/pkg/render"
)

// SessionBuilder allows fluent construction of test sessions.
type SessionBuilder struct {
	ctx  context.Context
	opts render.SessionOptions
}

// NewSession creates a session builder for the route "/test".
func NewSession() *SessionBuilder {
	return &SessionBuilder{
		ctx: context.Background(),
		opts: render.SessionOptions{
			Route:  "/test",
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}
}

// WithRoute sets the session route.
func (b *SessionBuilder) WithRoute(route string) *SessionBuilder {
	b.opts.Route = route
	return b
}

// WithPartial renders fragments without a doctype.
func (b *SessionBuilder) WithPartial() *SessionBuilder {
	b.opts.Partial = true
	return b
}

// WithCompressHTML drops generated whitespace.
func (b *SessionBuilder) WithCompressHTML() *SessionBuilder {
	b.opts.CompressHTML = true
	return b
}

// WithObserver attaches an observer.
func (b *SessionBuilder) WithObserver(o render.Observer) *SessionBuilder {
	b.opts.Observer = o
	return b
}

// WithLogger replaces the discarding logger.
func (b *SessionBuilder) WithLogger(l *slog.Logger) *SessionBuilder {
	b.opts.Logger = l
	return b
}

// WithContext sets the parent context.
func (b *SessionBuilder) WithContext(ctx context.Context) *SessionBuilder {
	b.ctx = ctx
	return b
}

// Build returns the session. It is closed when the test ends.
func (b *SessionBuilder) Build(tb testing.TB) *render.Session {
	tb.Helper()
	s := render.NewSession(b.ctx, b.opts)
	tb.Cleanup(s.Close)
	return s
}

// RenderPage renders f as a page with the string adapter in a fresh
// session. It fails the test on an error or an early response.
func RenderPage(tb testing.TB, f render.Factory, props render.Props) string {
	tb.Helper()
	return RenderPageIn(tb, NewSession().Build(tb), f, props)
}

// RenderPageIn is RenderPage in an existing session.
func RenderPageIn(tb testing.TB, s *render.Session, f render.Factory, props render.Props) string {
	tb.Helper()
	html, resp, err := render.RenderToString(s, render.Call{Factory: f, Props: props, IsPage: true})
	if err != nil {
		tb.Fatalf("render %s: %v", s.Route(), err)
	}
	if resp != nil {
		tb.Fatalf("render %s: unexpected %d response", s.Route(), resp.Status)
	}
	return html
}

// ExpectResponse renders f and returns its early response, failing the
// test when the page renders markup instead.
func ExpectResponse(tb testing.TB, f render.Factory, props render.Props) *render.Response {
	tb.Helper()
	s := NewSession().Build(tb)
	html, resp, err := render.RenderToString(s, render.Call{Factory: f, Props: props, IsPage: true})
	if err != nil {
		tb.Fatalf("render %s: %v", s.Route(), err)
	}
	if resp == nil {
		tb.Fatalf("expected a response, got markup: %s", truncate(html, 200))
	}
	return resp
}

// ExpectContains asserts that html contains expected.
func ExpectContains(tb testing.TB, html, expected string) {
	tb.Helper()
	if !strings.Contains(html, expected) {
		tb.Errorf("expected HTML to contain %q\nGot: %s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that html does not contain unexpected.
func ExpectNotContains(tb testing.TB, html, unexpected string) {
	tb.Helper()
	if strings.Contains(html, unexpected) {
		tb.Errorf("expected HTML not to contain %q\nGot: %s", unexpected, truncate(html, 500))
	}
}

// ExpectOrder asserts that parts appear in html in the given order.
func ExpectOrder(tb testing.TB, html string, parts ...string) {
	tb.Helper()
	rest := html
	for _, p := range parts {
		i := strings.Index(rest, p)
		if i < 0 {
			tb.Errorf("expected %q after the previous parts\nGot: %s", p, truncate(html, 500))
			return
		}
		rest = rest[i+len(p):]
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
