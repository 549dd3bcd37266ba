package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/ssr/pkg/render"
)

// Route binds a chi pattern to a page.
type Route struct {
	// Pattern is a chi route pattern, e.g. "/posts/{slug}".
	Pattern string

	// Page produces the page markup.
	Page render.Factory

	// Props derives page props from the request. When nil the chi URL
	// parameters become props.
	Props func(r *http.Request) render.Props
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	gatherer   prometheus.Gatherer
	middleware []func(http.Handler) http.Handler
}

// WithGatherer sets the gatherer served on the metrics path.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.gatherer = g
	}
}

// WithMiddleware adds HTTP middleware in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// NewRouter builds the HTTP surface: one page handler per route, plus the
// WebSocket and metrics endpoints when their paths are configured.
func NewRouter(routes []Route, cfg *ServerConfig, opts ...RouterOption) chi.Router {
	cfg = cfg.withDefaults()
	o := routerOptions{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(o.middleware...)

	pages := chi.NewRouter()
	byPattern := make(map[string]Route, len(routes))
	for _, rt := range routes {
		h := &Handler{Route: rt.Pattern, Page: rt.Page, Props: propsFunc(rt), Config: cfg}
		r.Method(http.MethodGet, rt.Pattern, h)
		pages.Method(http.MethodGet, rt.Pattern, http.NotFoundHandler())
		byPattern[rt.Pattern] = rt
	}

	if cfg.WebSocketPath != "" {
		resolve := func(req *http.Request, path string) (render.Call, bool) {
			rctx := chi.NewRouteContext()
			if !pages.Match(rctx, http.MethodGet, path) {
				return render.Call{}, false
			}
			rt, ok := byPattern[rctx.RoutePattern()]
			if !ok {
				return render.Call{}, false
			}
			// Props see the page path and its URL parameters, not the
			// upgrade request's.
			pageReq := req.Clone(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			pageReq.URL.Path = path
			return render.Call{
				Factory: rt.Page,
				Props:   propsFunc(rt)(pageReq),
				IsPage:  true,
				Route:   rt.Pattern,
			}, true
		}
		r.Method(http.MethodGet, cfg.WebSocketPath, NewWebSocketHandler(resolve, cfg))
	}

	if cfg.StaticDir != "" {
		if !staticDirExists(cfg.StaticDir) {
			cfg.Logger.Warn("static directory does not exist", "dir", cfg.StaticDir)
		}
		prefix := strings.TrimSuffix(cfg.StaticPrefix, "/")
		r.Method(http.MethodGet, prefix+"/*", NewStaticHandler(cfg.StaticDir, cfg.StaticPrefix))
		r.Method(http.MethodHead, prefix+"/*", NewStaticHandler(cfg.StaticDir, cfg.StaticPrefix))
	}

	if cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		cfg.Logger.Debug("no route", "path", req.URL.Path)
		http.NotFound(w, req)
	})
	return r
}

func propsFunc(rt Route) func(*http.Request) render.Props {
	if rt.Props != nil {
		return rt.Props
	}
	return URLParams
}

// URLParams returns the chi URL parameters of r as props.
func URLParams(r *http.Request) render.Props {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	props := make(render.Props, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		props[k] = rctx.URLParams.Values[i]
	}
	return props
}
