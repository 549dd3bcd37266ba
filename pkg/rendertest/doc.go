// Package rendertest provides testing helpers for pages and components.
//
// # Quick Start
//
//	func TestHome(t *testing.T) {
//	    html := rendertest.RenderPage(t, Home, nil)
//	    rendertest.ExpectContains(t, html, "<h1>Welcome</h1>")
//	}
//
// # Fluent Session Builder
//
// The session builder allows chaining setup options:
//
//	s := rendertest.NewSession().
//	    WithRoute("/posts/1").
//	    WithPartial().
//	    Build(t)
//
// Sessions log to io.Discard and are closed when the test ends.
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	rendertest.ExpectContains(t, html, "Welcome")
//	rendertest.ExpectNotContains(t, html, "Login")
//	rendertest.ExpectOrder(t, html, "<head>", "<style>", "</head>", "<body>")
package rendertest
