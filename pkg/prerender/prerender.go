package prerender

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/routepath"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Page is one route to generate.
type Page struct {
	Route   string
	Factory render.Factory
	Props   render.Props
}

// Options configures Prerender.
type Options struct {
	CompressHTML bool
	Logger       *slog.Logger
	Observer     render.Observer
}

// Result reports what Prerender did, by route.
type Result struct {
	Written   []string
	Redirects []string
	Skipped   []string
}

// Prerender renders every page with the string adapter and stores the
// output as route/index.html.
//
// A page that answers with a redirect is stored as a meta-refresh stub
// pointing at the target. Any other early response is skipped with a
// warning. The first render or store failure stops the run.
func Prerender(ctx context.Context, store Store, pages []Page, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "prerender")

	res := &Result{}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		route, _, err := routepath.Clean(p.Route)
		if err != nil {
			return res, fmt.Errorf("prerender %q: %w", p.Route, err)
		}
		p.Route = route

		body, resp, err := renderPage(ctx, p, opts, logger)
		if err != nil {
			return res, err
		}
		key := OutputPath(p.Route)

		switch {
		case resp == nil:
			res.Written = append(res.Written, p.Route)
		case resp.IsRedirect():
			body = redirectStub(resp.Header.Get("Location"))
			res.Redirects = append(res.Redirects, p.Route)
		default:
			logger.Warn("skipping page with non-redirect response", "route", p.Route, "status", resp.Status)
			res.Skipped = append(res.Skipped, p.Route)
			continue
		}

		if err := store.Put(ctx, key, contentTypeHTML, []byte(body)); err != nil {
			return res, errors.New("E160").WithRoute(p.Route).Wrap(err)
		}
		logger.Debug("page stored", "route", p.Route, "path", key, "bytes", len(body))
	}
	return res, nil
}

func renderPage(ctx context.Context, p Page, opts Options, logger *slog.Logger) (string, *render.Response, error) {
	s := render.NewSession(ctx, render.SessionOptions{
		Route:        p.Route,
		CompressHTML: opts.CompressHTML,
		Logger:       logger,
		Observer:     opts.Observer,
	})
	defer s.Close()
	return render.RenderToString(s, render.Call{Factory: p.Factory, Props: p.Props, IsPage: true})
}

// OutputPath maps a route to its store key: "/" is "index.html" and
// "/blog/" is "blog/index.html".
func OutputPath(route string) string {
	route = strings.Trim(route, "/")
	if route == "" {
		return "index.html"
	}
	if strings.HasSuffix(route, ".html") {
		return route
	}
	return route + "/index.html"
}

func redirectStub(location string) string {
	loc := string(render.Escape(location))
	return fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">"+
		"<meta http-equiv=\"refresh\" content=\"0;url=%s\">"+
		"<link rel=\"canonical\" href=\"%s\">"+
		"<title>Redirecting</title></head><body><a href=\"%s\">%s</a></body></html>\n",
		loc, loc, loc, loc)
}
