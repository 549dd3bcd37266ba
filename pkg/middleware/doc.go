// Package middleware provides production observability for ssr renders.
//
// This package includes:
//   - Prometheus metrics, as a render.Observer
//   - OpenTelemetry tracing, as a render.Observer and as HTTP middleware
//   - Chain, which fans one render out to several observers
//
// # Prometheus Metrics
//
// Metrics records every render, keyed by delivery mode:
//   - ssr_renders_total: Renders by mode and status (ok, error, cancelled, ...)
//   - ssr_render_duration_seconds: Render duration histogram
//   - ssr_render_bytes_total / ssr_render_chunks_total: Output volume
//   - ssr_render_cancellations_total: Renders stopped by the client
//   - ssr_renders_in_flight: Renders currently running
//   - ssr_head_fragments: Propagated head fragments per render
//
//	m := middleware.NewMetrics(middleware.WithNamespace("myapp"))
//	s := render.NewSession(ctx, render.SessionOptions{Observer: m})
//
// Expose the registry with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// Tracing opens a span per render carrying ssr.mode, ssr.route and
// ssr.render_id. Instrument wraps an http.Handler in a server span; since
// sessions are created from the request context, render spans nest under
// the request span.
//
//	tr := middleware.NewTracing(middleware.WithTracerName("my-app"))
//	r.Use(tr.Instrument)
//	obs := middleware.Chain{m, tr}
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure it in main() before starting the server.
package middleware
