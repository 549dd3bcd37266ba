// Package server is the HTTP transport for ssr pages.
//
// It binds render sessions to requests and picks the delivery adapter:
//
//   - Handler serves one page over HTTP with the string, stream or pull
//     adapter. Early responses (redirects, 404s) are written before any
//     body byte.
//   - WebSocketHandler renders a page with the pull adapter and sends each
//     block as a binary message.
//   - NewRouter mounts pages on a chi router, passes route parameters to
//     pages as props and exposes Prometheus metrics.
//   - Server wraps http.Server with graceful shutdown.
//
// # Sessions
//
// Every request gets its own render.Session created from the request
// context, so a client disconnect cancels the render and nothing else is
// written. The session ID is returned in the X-Render-Id header.
//
// # Partial Renders
//
// A request with ?partial=1 renders a fragment: no doctype is inserted.
// This is what client-side navigation uses to swap page bodies.
package server
