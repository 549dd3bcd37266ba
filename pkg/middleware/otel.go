package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ssr/pkg/render"
)

// Default tracer name for ssr.
const defaultTracerName = "github.com/vango-dev/ssr"

// TracingConfig configures the OpenTelemetry observer and middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "github.com/vango-dev/ssr").
	TracerName string

	// Tracer overrides the tracer from the global provider.
	Tracer trace.Tracer

	// Filter determines which requests Instrument traces.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool
}

// TracingOption configures tracing.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer explicitly.
func WithTracer(t trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = t
	}
}

// WithRequestFilter sets a filter function for Instrument.
func WithRequestFilter(filter func(r *http.Request) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// Tracing is a render.Observer that opens one span per render, and an HTTP
// middleware that opens one span per request.
type Tracing struct {
	tracer trace.Tracer
	filter func(r *http.Request) bool

	// spans maps renderKey to *renderSpan.
	spans sync.Map
}

type renderSpan struct {
	span       trace.Span
	firstChunk atomic.Bool
}

// NewTracing creates a tracing observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		// Resolve tracer from global provider
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{tracer: tracer, filter: config.Filter}
}

// RenderStarted implements render.Observer. The span is a child of the span
// in the session context, if any.
func (t *Tracing) RenderStarted(s *render.Session, mode render.Mode) {
	_, span := t.tracer.Start(s.Context(), "ssr.render "+mode.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("ssr.mode", mode.String()),
			attribute.String("ssr.route", s.Route()),
			attribute.String("ssr.render_id", s.ID()),
		),
	)
	t.spans.Store(renderKey{s.ID(), mode}, &renderSpan{span: span})
}

// ChunkWritten implements render.Observer. The first chunk is marked with
// a span event, giving time to first byte.
func (t *Tracing) ChunkWritten(s *render.Session, mode render.Mode, _ int) {
	v, ok := t.spans.Load(renderKey{s.ID(), mode})
	if !ok {
		return
	}
	rs := v.(*renderSpan)
	if rs.firstChunk.CompareAndSwap(false, true) {
		rs.span.AddEvent("first chunk")
	}
}

// RenderFinished implements render.Observer.
func (t *Tracing) RenderFinished(s *render.Session, mode render.Mode, err error) {
	v, ok := t.spans.LoadAndDelete(renderKey{s.ID(), mode})
	if !ok {
		return
	}
	span := v.(*renderSpan).span
	defer span.End()

	span.SetAttributes(
		attribute.Int("ssr.head_fragments", len(s.ExtraHead())),
		attribute.String("ssr.status", categorizeError(err)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// Instrument wraps next in a server span per request. The span context is
// placed on the request context so render sessions created from it nest
// their spans under the request.
func (t *Tracing) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.filter != nil && !t.filter(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := t.tracer.Start(r.Context(), formatSpanName(r),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", sw.status))
		if sw.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(sw.status))
		}
	})
}

// formatSpanName creates a span name from the request.
func formatSpanName(r *http.Request) string {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s %s", r.Method, path)
}

// statusWriter records the response status. It keeps http.Flusher and
// http.Hijacker working for streamed and WebSocket responses.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(p)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("middleware: %T does not implement http.Hijacker", w.ResponseWriter)
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
