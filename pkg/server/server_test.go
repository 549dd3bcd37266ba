package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/vango-dev/ssr/internal/config"
	"github.com/vango-dev/ssr/pkg/render"
)

func TestServerServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(render.ModeStream)
	cfg.ShutdownTimeout = time.Second
	srv := New(NewRouter(testRoutes(), cfg), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/?partial=1")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<p>home</p>" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerRunBadAddress(t *testing.T) {
	cfg := testConfig(render.ModeString)
	cfg.Address = "256.0.0.1:bad"
	if err := New(http.NotFoundHandler(), cfg).Run(context.Background()); err == nil {
		t.Error("Run() should fail on an invalid address")
	}
}

func TestFromConfig(t *testing.T) {
	fc := config.New()
	fc.Server.Mode = "pull"
	fc.Server.Port = 8080
	fc.Server.WebSocket = true
	fc.Metrics.Enabled = true
	fc.Render.CompressHTML = true

	sc, err := FromConfig(fc)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Mode != render.ModePull {
		t.Errorf("Mode = %v", sc.Mode)
	}
	if sc.Address != "localhost:8080" {
		t.Errorf("Address = %q", sc.Address)
	}
	if sc.WebSocketPath != "/_ws" || sc.MetricsPath != "/metrics" {
		t.Errorf("paths = %q, %q", sc.WebSocketPath, sc.MetricsPath)
	}
	if !sc.CompressHTML {
		t.Error("CompressHTML not carried over")
	}

	fc.Server.Mode = "push"
	if _, err := FromConfig(fc); err == nil {
		t.Error("unknown mode should fail")
	}

	fc.Server.Mode = "string"
	fc.Server.ShutdownTimeout = "soon"
	if _, err := FromConfig(fc); err == nil {
		t.Error("bad shutdown timeout should fail")
	}
}

func TestWithDefaults(t *testing.T) {
	var nilCfg *ServerConfig
	if got := nilCfg.withDefaults(); got.Address != ":3000" || got.Mode != render.ModeStream {
		t.Errorf("nil config defaults = %+v", got)
	}

	cfg := (&ServerConfig{Address: ":9000"}).withDefaults()
	if cfg.Address != ":9000" || cfg.Logger == nil || cfg.CheckOrigin == nil || cfg.WriteTimeout == 0 {
		t.Errorf("withDefaults = %+v", cfg)
	}
}
