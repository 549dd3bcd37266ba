package main

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/ssr/internal/config"
	"github.com/vango-dev/ssr/internal/demo"
	"github.com/vango-dev/ssr/pkg/assets"
	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/server"
)

// app is everything a command needs, built from the project config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *server.ServerConfig
	registry *prometheus.Registry
	tracing  *middleware.Tracing
	demo     demo.Options
}

func loadApp(dir string, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logOut)
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger(logOut)
	if err != nil {
		return nil, err
	}
	sc, err := server.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sc.Logger = logger

	a := &app{
		cfg:    cfg,
		logger: logger,
		server: sc,
		demo:   demo.Options{Lang: cfg.Render.Lang},
	}
	if dir := cfg.StaticPath(); dir != "" {
		if a.demo.Assets, err = assets.ForDir(dir, cfg.Server.StaticPrefix); err != nil {
			return nil, err
		}
	}

	var observers middleware.Chain
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		observers = append(observers, middleware.NewMetrics(
			middleware.WithRegistry(a.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	if cfg.Tracing.Enabled {
		a.tracing = middleware.NewTracing(middleware.WithTracerName(cfg.Tracing.TracerName))
		observers = append(observers, a.tracing)
	}
	if len(observers) > 0 {
		sc.Observer = observers
	}
	return a, nil
}

// router mounts the demo site with the configured observability.
func (a *app) router() http.Handler {
	var opts []server.RouterOption
	if a.registry != nil {
		opts = append(opts, server.WithGatherer(a.registry))
	}
	if a.tracing != nil {
		opts = append(opts, server.WithMiddleware(a.tracing.Instrument))
	}
	return server.NewRouter(demo.Routes(a.demo), a.server, opts...)
}

// withMode overrides the delivery mode when mode is set.
func (a *app) withMode(mode string) error {
	if mode == "" {
		return nil
	}
	m, err := render.ParseMode(mode)
	if err != nil {
		return err
	}
	a.server.Mode = m
	return nil
}
