// Package demo is a small site that exercises the render pipeline: a page
// whose components hoist head content, a list whose items resolve slowly
// and concurrently, and a route that answers with a redirect.
package demo

import (
	"net/http"
	"time"

	"github.com/vango-dev/ssr/pkg/assets"
	"github.com/vango-dev/ssr/pkg/prerender"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/server"
)

// Options tunes the demo pages.
type Options struct {
	// Lang is the html lang attribute.
	Lang string

	// ItemDelay is how long each list item takes to resolve.
	ItemDelay time.Duration

	// Assets links demo.css and demo.js from the static directory when set.
	Assets *assets.Resolver
}

func (o Options) head(title string) render.HeadData {
	h := render.HeadData{Title: title}
	if o.Assets != nil {
		h.StyleSheets = []string{o.Assets.Asset("demo.css")}
		h.Scripts = []render.ScriptTag{o.Assets.Script("demo.js")}
	}
	return h
}

// Routes returns the demo site.
func Routes(opts Options) []server.Route {
	return []server.Route{
		{Pattern: "/", Page: Home(opts)},
		{Pattern: "/posts/{slug}", Page: Post(opts)},
		{Pattern: "/old-home", Page: Redirect("/")},
	}
}

// StaticPages returns the demo routes that need no URL parameters.
func StaticPages(opts Options) []prerender.Page {
	return []prerender.Page{
		{Route: "/", Factory: Home(opts)},
		{Route: "/old-home", Factory: Redirect("/")},
	}
}

var features = []string{"string", "stream", "pull"}

// Home renders a document with a themed banner and a slow list.
func Home(opts Options) render.Factory {
	head := opts.head("ssr demo")
	head.Meta = []render.MetaTag{{Name: "description", Content: "Streaming server-side rendering"}}
	doc := render.Document(render.DocumentData{Lang: opts.Lang, Head: head})
	return func(s *render.Session, _ render.Props, _ render.Slots) (any, error) {
		banner := render.Propagate(s, "Banner", banner, render.Props{"color": "#0a7"}, nil)
		body := render.Template(
			banner,
			render.Element("h1", nil, "Delivery modes"),
			render.Element("ul", render.Attrs{"class:list": []any{"modes", map[string]any{"slow": opts.ItemDelay > 0}}},
				render.Each(features, func(i int, name string) any {
					return slowItem(i, name, opts.ItemDelay)
				}),
			),
		)
		return doc(s, nil, render.Slots{render.DefaultSlot: body})
	}
}

// banner contributes its stylesheet to the head before the body streams.
func banner(_ *render.Session, props render.Props, _ render.Slots) (any, error) {
	color, _ := props["color"].(string)
	return &render.HeadAndContent{
		Head: func() string {
			return "<style>.banner{border-left:4px solid " + color + "}</style>"
		},
		Content: render.Element("div", render.Attrs{"class": "banner", "data-color": color}, "Rendered on the server"),
	}, nil
}

// slowItem waits for delay before producing its markup. Items render
// concurrently, so the list takes about one delay in total.
func slowItem(i int, name string, delay time.Duration) render.TemplateResult {
	return render.TemplateFunc(func(s *render.Session, d render.Destination) error {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-s.Done():
				return s.Err()
			}
		}
		return render.Element("li", render.Attrs{"data-index": i}, name).Render(s, d)
	})
}

// Post renders a post named by the slug prop.
func Post(opts Options) render.Factory {
	doc := render.Document(render.DocumentData{Lang: opts.Lang, Head: opts.head("post")})
	return func(s *render.Session, props render.Props, _ render.Slots) (any, error) {
		slug, _ := props["slug"].(string)
		if slug == "" {
			return &render.Response{Status: http.StatusNotFound, Body: []byte("not found")}, nil
		}
		body := render.Element("article", nil, render.Element("h1", nil, slug))
		return doc(s, nil, render.Slots{render.DefaultSlot: body})
	}
}

// Redirect answers with a permanent redirect to location.
func Redirect(location string) render.Factory {
	return func(*render.Session, render.Props, render.Slots) (any, error) {
		return render.NewRedirect(location, http.StatusMovedPermanently), nil
	}
}
