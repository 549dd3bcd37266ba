// Package errors provides structured, actionable error messages for the
// SSR runtime and its tooling.
//
// Every error carries a code (e.g. "E200") that maps to a registered
// template with a short message, a longer explanation and a documentation
// link. Render-time errors additionally name the route or component that
// produced them so a failing page can be located without a stack trace.
//
// # Error Categories
//
//   - render: failures while driving a component tree
//   - contract: a component returned something that cannot be rendered
//   - stream: delivery failures after output has been committed
//   - config: ssr.json / ssr.yaml problems
//   - storage: prerender output could not be stored
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E200").
//	    WithRoute("/blog/[slug]").
//	    WithSuggestion("Return a template result or a *render.Response")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E200: Only a Response or a template result can be returned
//	//
//	//   route /blog/[slug]
//	//
//	//   Hint: Return a template result or a *render.Response
//	//
//	//   Learn more: https://vango.dev/docs/ssr/errors/E200
package errors
