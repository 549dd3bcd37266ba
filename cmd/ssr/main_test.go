package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/prerender"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ssr.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestVersionShort(t *testing.T) {
	out, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != "dev\n" {
		t.Errorf("version --short = %q", out)
	}
}

func TestRenderEveryMode(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"string", "stream", "pull"} {
		t.Run(mode, func(t *testing.T) {
			out, _, err := execute(t, "render", "/", "--mode", mode, "-C", dir)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(out, "<!DOCTYPE html>") {
				t.Errorf("missing doctype:\n%s", out)
			}
			if !strings.Contains(out, `<li data-index="2">pull</li>`) {
				t.Errorf("missing list item:\n%s", out)
			}
		})
	}
}

func TestRenderPartialWithParams(t *testing.T) {
	out, _, err := execute(t, "render", "/posts/hello", "--partial", "--compress", "-C", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<!DOCTYPE") {
		t.Errorf("partial render has a doctype:\n%s", out)
	}
	if !strings.Contains(out, "<article><h1>hello</h1></article>") {
		t.Errorf("missing article:\n%s", out)
	}
}

func TestRenderRedirect(t *testing.T) {
	out, errOut, err := execute(t, "render", "/old-home", "-C", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	if !strings.Contains(errOut, "redirects to / (301)") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRenderUnknownRoute(t *testing.T) {
	_, _, err := execute(t, "render", "/nope", "-C", t.TempDir())
	if errors.CodeOf(err) != "E180" {
		t.Errorf("err = %v, want E180", err)
	}
}

func TestRenderRejectsEscapingRoute(t *testing.T) {
	_, _, err := execute(t, "render", "/../etc/passwd", "-C", t.TempDir())
	if err == nil {
		t.Error("expected an error for a path above the root")
	}
}

func TestRenderBadMode(t *testing.T) {
	_, _, err := execute(t, "render", "/", "--mode", "push", "-C", t.TempDir())
	if errors.CodeOf(err) != "E123" {
		t.Errorf("err = %v, want E123", err)
	}
}

func TestRenderWithObservability(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: string
metrics:
  enabled: true
tracing:
  enabled: true
render:
  lang: nl
log:
  level: debug
  format: json
`)
	out, errOut, err := execute(t, "render", "/", "-C", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<html lang="nl">`) {
		t.Errorf("lang from config not applied:\n%s", out)
	}
	if !strings.Contains(errOut, `"msg"`) {
		t.Errorf("expected JSON debug logs on stderr, got %q", errOut)
	}
}

func TestRenderLinksStaticAssets(t *testing.T) {
	dir := writeConfig(t, "server:\n  staticDir: public\n")
	if err := os.MkdirAll(filepath.Join(dir, "public"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "public", "demo.3f9a1c2e.css"), []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "render", "/", "-C", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `href="/static/demo.3f9a1c2e.css"`) {
		t.Errorf("fingerprinted stylesheet not linked:\n%s", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := writeConfig(t, "log:\n  level: loud\n")
	_, _, err := execute(t, "render", "/", "-C", dir)
	if errors.CodeOf(err) != "E124" {
		t.Errorf("err = %v, want E124", err)
	}
}

func TestPrerenderToDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public")

	stdout, _, err := execute(t, "prerender", "--out", out, "-C", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Prerendered 2 pages") {
		t.Errorf("stdout = %q", stdout)
	}

	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(home), "<h1>Delivery modes</h1>") {
		t.Errorf("index.html = %q", home)
	}
	stub, err := os.ReadFile(filepath.Join(out, "old-home", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stub), `http-equiv="refresh"`) {
		t.Errorf("redirect stub = %q", stub)
	}
}

func TestPrerenderDefaultOutDir(t *testing.T) {
	dir := writeConfig(t, "prerender:\n  outDir: site\n  routes: [\"/\"]\n")
	if _, _, err := execute(t, "prerender", "-C", dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "site", "index.html")); err != nil {
		t.Errorf("index.html not written to configured outDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "site", "old-home")); !os.IsNotExist(err) {
		t.Error("unlisted route was prerendered")
	}
}

func TestPrerenderRejectsParameterRoutes(t *testing.T) {
	dir := writeConfig(t, "prerender:\n  routes: [\"/posts/{slug}\"]\n")
	_, _, err := execute(t, "prerender", "-C", dir)
	if errors.CodeOf(err) != "E180" {
		t.Errorf("err = %v, want E180", err)
	}
}

func TestSelectPages(t *testing.T) {
	pages := []prerender.Page{{Route: "/a"}, {Route: "/b"}, {Route: "/c"}}

	all, err := selectPages(pages, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("selectPages(nil) = %v, %v", all, err)
	}
	some, err := selectPages(pages, []string{"/c", "/a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(some) != 2 || some[0].Route != "/c" || some[1].Route != "/a" {
		t.Errorf("selectPages = %v", some)
	}
}

func TestStdoutWriterDiscardsErrorBodies(t *testing.T) {
	var buf bytes.Buffer
	w := &stdoutWriter{out: &buf, header: make(http.Header)}
	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("404 page not found"))

	if w.status != http.StatusNotFound || buf.Len() != 0 {
		t.Errorf("status = %d, out = %q", w.status, buf.String())
	}
}
