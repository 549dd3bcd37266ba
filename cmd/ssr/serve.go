package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ssr/pkg/server"
)

func serveCmd(dir *string) *cobra.Command {
	var (
		port int
		host string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages over HTTP",
		Long: `Serve the site over HTTP until interrupted.

The delivery mode, WebSocket endpoint, metrics and tracing come from the
config file.

Examples:
  ssr serve
  ssr serve --port=8080 --mode=pull
  ssr serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if host != "" {
				a.cfg.Server.Host = host
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.server.Address = a.cfg.Address()
			if err := a.withMode(mode); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			success(out, "Listening on http://%s (%s mode)", a.server.Address, a.server.Mode)
			if a.server.WebSocketPath != "" {
				info(out, "WebSocket: %s?path=/", a.server.WebSocketPath)
			}
			if a.server.MetricsPath != "" {
				info(out, "Metrics:   %s", a.server.MetricsPath)
			}
			return server.New(a.router(), a.server).Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Delivery mode: string, stream or pull (default from config)")

	return cmd
}
