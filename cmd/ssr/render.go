package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/routepath"
)

func renderCmd(dir *string) *cobra.Command {
	var (
		mode     string
		partial  bool
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "render [route]",
		Short: "Render one route to stdout",
		Long: `Render a route through the same handler the server uses and print
the HTML to stdout. Redirects and other early responses are reported on
stderr instead.

Examples:
  ssr render /
  ssr render /posts/hello --mode=pull
  ssr render / --partial --compress`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := "/"
			if len(args) == 1 {
				route = args[0]
			}
			return runRender(cmd, *dir, route, mode, partial, compress)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Delivery mode: string, stream or pull (default from config)")
	cmd.Flags().BoolVar(&partial, "partial", false, "Render a fragment without a doctype")
	cmd.Flags().BoolVar(&compress, "compress", false, "Drop generated whitespace")

	return cmd
}

func runRender(cmd *cobra.Command, dir, route, mode string, partial, compress bool) error {
	a, err := loadApp(dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := a.withMode(mode); err != nil {
		return err
	}
	if partial {
		a.server.Partial = true
	}
	if compress {
		a.server.CompressHTML = true
	}

	path, query, err := routepath.Clean(route)
	if err != nil {
		return err
	}
	if query != "" {
		path += "?" + query
	}
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	w := &stdoutWriter{out: cmd.OutOrStdout(), header: make(http.Header)}
	a.router().ServeHTTP(w, req)

	switch {
	case w.status == http.StatusNotFound:
		return errors.New("E180").WithRoute(route)
	case w.status >= 300 && w.status < 400:
		warn(cmd.ErrOrStderr(), "%s redirects to %s (%d)", route, w.header.Get("Location"), w.status)
	case w.status >= 400:
		return fmt.Errorf("render %s: %d %s", route, w.status, http.StatusText(w.status))
	}
	return nil
}

// stdoutWriter is an http.ResponseWriter that copies 200 bodies to out and
// discards everything else.
type stdoutWriter struct {
	out    io.Writer
	header http.Header
	status int
}

func (w *stdoutWriter) Header() http.Header {
	return w.header
}

func (w *stdoutWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *stdoutWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.status != http.StatusOK {
		return len(p), nil
	}
	return w.out.Write(p)
}

// Flush lets the stream adapter push chunks as they are produced.
func (w *stdoutWriter) Flush() {}
