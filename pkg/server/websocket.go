package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/routepath"
)

// earlyResponse is the text frame sent when a page answers with a
// *render.Response instead of markup.
type earlyResponse struct {
	Type     string `json:"type"`
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
}

// WebSocketHandler delivers a page over a WebSocket with the pull adapter.
//
// The page is chosen by the ?path= query. Each block the iterator produces
// is sent as one binary message. The connection closes with
// CloseNormalClosure when the page is complete and with
// CloseInternalServerErr, carrying the error code, when it fails. A client
// that goes away stops the render.
type WebSocketHandler struct {
	resolve  func(r *http.Request, path string) (render.Call, bool)
	config   *ServerConfig
	upgrader websocket.Upgrader
}

// NewWebSocketHandler returns a handler that resolves pages with resolve.
func NewWebSocketHandler(resolve func(r *http.Request, path string) (render.Call, bool), cfg *ServerConfig) *WebSocketHandler {
	cfg = cfg.withDefaults()
	return &WebSocketHandler{
		resolve: resolve,
		config:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, _, err := routepath.Clean(r.URL.Query().Get("path"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call, ok := h.resolve(r, path)
	if !ok {
		h.config.Logger.Debug("websocket render failed", "path", path, "error", ErrRouteNotFound)
		http.NotFound(w, r)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.config.Logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s := render.NewSession(r.Context(), render.SessionOptions{
		Route:        path,
		CompressHTML: h.config.CompressHTML,
		Partial:      h.config.Partial || r.URL.Query().Get("partial") == "1",
		Logger:       h.config.Logger,
		Observer:     h.config.Observer,
	})
	defer s.Close()
	if call.Route == "" {
		call.Route = path
	}

	it, resp, err := render.RenderToIterator(s, call)
	if err != nil {
		h.closeWithError(conn, s, err)
		return
	}
	if resp != nil {
		h.sendResponse(conn, s, resp)
		return
	}

	go h.readLoop(conn, it, s.Logger())

	for block, err := range it.All(s.Context()) {
		if err != nil {
			h.closeWithError(conn, s, err)
			return
		}
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, block); err != nil {
			s.Logger().Debug("websocket write failed", "error", err)
			it.Return()
			return
		}
	}
	if s.Cancelled() {
		return
	}
	h.close(conn, websocket.CloseNormalClosure, "")
}

// readLoop discards client messages and stops the iterator once the
// client closes the connection or the read fails.
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, it *render.Iterator, logger *slog.Logger) {
	defer it.Return()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, s *render.Session, resp *render.Response) {
	msg := earlyResponse{Type: "response", Status: resp.Status}
	if resp.IsRedirect() {
		msg.Type = "redirect"
		msg.Location = resp.Header.Get("Location")
	}
	conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.Logger().Debug("websocket write failed", "error", err)
		return
	}
	h.close(conn, websocket.CloseNormalClosure, "")
}

func (h *WebSocketHandler) closeWithError(conn *websocket.Conn, s *render.Session, err error) {
	if errors.Is(err, render.ErrRenderCancelled) {
		return
	}
	code := ssrerrors.CodeOf(err)
	s.Logger().Error("websocket render failed", "error", err, "code", code)
	h.close(conn, websocket.CloseInternalServerErr, code)
}

func (h *WebSocketHandler) close(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(h.config.WriteTimeout)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
