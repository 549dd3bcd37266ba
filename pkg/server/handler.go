package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Handler serves one page over HTTP.
type Handler struct {
	// Route names the page in sessions, logs and errors.
	Route string

	// Page produces the page. It may return an early *render.Response.
	Page render.Factory

	// Props derives page props from the request. Optional.
	Props func(r *http.Request) render.Props

	// Config selects the delivery adapter and session defaults.
	Config *ServerConfig
}

// NewHandler returns a handler for page.
func NewHandler(route string, page render.Factory, cfg *ServerConfig) *Handler {
	return &Handler{Route: route, Page: page, Config: cfg}
}

// ServeHTTP renders the page with the configured mode.
//
// Errors raised before the first body byte become a 500 response. Errors
// after that point can only end the response early and are logged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.Config.withDefaults()
	route := h.Route
	if route == "" {
		route = r.URL.Path
	}

	s := render.NewSession(r.Context(), render.SessionOptions{
		Route:        route,
		CompressHTML: cfg.CompressHTML,
		Partial:      cfg.Partial || r.URL.Query().Get("partial") == "1",
		Logger:       cfg.Logger,
		Observer:     cfg.Observer,
	})
	defer s.Close()

	var props render.Props
	if h.Props != nil {
		props = h.Props(r)
	}
	call := render.Call{Factory: h.Page, Props: props, IsPage: true, Route: route}
	w.Header().Set("X-Render-Id", s.ID())

	switch cfg.Mode {
	case render.ModeStream:
		st, resp, err := render.RenderToStream(s, call)
		if !h.preamble(w, r, s, resp, err) {
			return
		}
		if _, err := st.WriteTo(w); err != nil {
			h.aborted(s, err)
		}

	case render.ModePull:
		it, resp, err := render.RenderToIterator(s, call)
		if !h.preamble(w, r, s, resp, err) {
			return
		}
		if _, err := it.WriteTo(w); err != nil {
			h.aborted(s, err)
		}

	default:
		body, resp, err := render.RenderToString(s, call)
		if !h.preamble(w, r, s, resp, err) {
			return
		}
		if _, err := w.Write([]byte(body)); err != nil {
			h.aborted(s, err)
		}
	}
}

// preamble handles the outcomes known before the body starts. It reports
// whether the caller should write the body.
func (h *Handler) preamble(w http.ResponseWriter, r *http.Request, s *render.Session, resp *render.Response, err error) bool {
	if err != nil {
		h.fail(w, s, err)
		return false
	}
	if resp != nil {
		s.Logger().Debug("early response", "status", resp.Status)
		resp.ServeHTTP(w, r)
		return false
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	return true
}

// fail writes a 500 for a render that failed before the first byte.
func (h *Handler) fail(w http.ResponseWriter, s *render.Session, err error) {
	if errors.Is(err, render.ErrRenderCancelled) {
		s.Logger().Debug("client went away before render started")
		return
	}
	s.Logger().Error("render failed", "error", err, "code", ssrerrors.CodeOf(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// aborted logs a failure after the response was committed.
func (h *Handler) aborted(s *render.Session, err error) {
	level := slog.LevelWarn
	if errors.Is(err, render.ErrRenderCancelled) {
		level = slog.LevelDebug
	}
	err = &RenderError{RenderID: s.ID(), Route: s.Route(), Op: "write", Err: err}
	s.Logger().Log(context.Background(), level, "response aborted", "error", err)
}
