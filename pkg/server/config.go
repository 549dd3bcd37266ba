package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/ssr/internal/config"
	"github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
)

// ServerConfig contains transport settings shared by every handler.
type ServerConfig struct {
	// Address is the listen address (default ":3000").
	Address string

	// Mode is the delivery adapter for HTTP page requests.
	Mode render.Mode

	// CompressHTML drops generated whitespace.
	CompressHTML bool

	// Partial renders every page as a fragment. Requests can also ask for
	// it with ?partial=1.
	Partial bool

	// WebSocketPath mounts WebSocketHandler when non-empty.
	WebSocketPath string

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string

	// StaticDir, when set, is served below StaticPrefix.
	StaticDir    string
	StaticPrefix string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin is called to validate the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds each WebSocket message write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout is passed to http.Server.
	ReadHeaderTimeout time.Duration

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger

	// Observer receives render callbacks for every session.
	Observer render.Observer
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
// SECURITY: CheckOrigin enforces same-origin by default.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":3000",
		Mode:              render.ModeStream,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// FromConfig builds a ServerConfig from the file configuration.
func FromConfig(cfg *config.Config) (*ServerConfig, error) {
	sc := DefaultServerConfig()
	sc.Address = cfg.Address()
	sc.CompressHTML = cfg.Render.CompressHTML
	sc.Partial = cfg.Render.Partial

	mode, err := render.ParseMode(cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	sc.Mode = mode

	if cfg.Server.WebSocket {
		sc.WebSocketPath = cfg.Server.WebSocketPath
	}
	if cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Server.StaticDir != "" {
		sc.StaticDir = cfg.StaticPath()
		sc.StaticPrefix = cfg.Server.StaticPrefix
	}
	if cfg.Server.ShutdownTimeout != "" {
		d, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
		if err != nil {
			return nil, errors.New("E120").
				WithDetail("server.shutdownTimeout: " + err.Error())
		}
		sc.ShutdownTimeout = d
	}
	return sc, nil
}

// withDefaults fills in defaults for any unset fields.
func (c *ServerConfig) withDefaults() *ServerConfig {
	if c == nil {
		return DefaultServerConfig()
	}
	out := *c
	defaults := DefaultServerConfig()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.StaticPrefix == "" {
		out.StaticPrefix = "/static/"
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
// This is the secure default for CheckOrigin.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	// Compare the host portion (includes port if present)
	return originURL.Host == host
}
