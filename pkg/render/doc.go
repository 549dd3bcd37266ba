// Package render turns a tree of component invocations into an HTML
// response body.
//
// A page is a Factory. Invoking it yields one of three variants: an early
// *Response that replaces the page entirely, a *HeadAndContent wrapper, or
// a TemplateResult that writes markup chunks to a Destination in document
// order. The package drives that output through one of three delivery
// adapters:
//
//   - RenderToString buffers the whole document and returns it at once.
//   - RenderToStream returns a *Stream that pushes encoded chunks into a
//     Controller as they are produced.
//   - RenderToIterator returns an *Iterator the transport pulls from at its
//     own pace while rendering runs ahead in the background.
//
// # Basic Usage
//
//	s := render.NewSession(r.Context(), render.SessionOptions{Route: "/"})
//	html, resp, err := render.RenderToString(s, render.Call{
//	    Factory: HomePage,
//	    IsPage:  true,
//	    Route:   "/",
//	})
//	if resp != nil {
//	    resp.ServeHTTP(w, r)
//	    return
//	}
//
// # Sessions
//
// A Session is created once per render and shared by pointer with every
// nested component. It carries the cancellation state, the compressHTML and
// partial flags, and the head fragments collected by head propagation.
// Cancellation is cooperative: templates check Session.Err between parts
// and stop scheduling work, adapters stop writing.
//
// # Head Propagation
//
// Components created with Propagate register themselves on the session.
// Before the body of a page streams, BufferHeadContent initializes every
// registered component and appends the head fragments they return, so the
// document head can include markup discovered deep in the body.
//
// # Concurrency
//
// Sibling parts given to Template as a []any (or built with Each) render
// concurrently into private buffers via BufferedRenderer and are flushed in
// document order, so slow siblings overlap without reordering output.
//
// # Security
//
// Plain strings and other values are escaped. Only Text and Bytes parts
// are written verbatim and should only carry trusted markup.
package render
