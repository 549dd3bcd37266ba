package assets

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

func TestSourceName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ok     bool
	}{
		{"app.3f9a1c2e.css", "app.css", true},
		{"js/main.ABCDEF12.js", "js/main.js", true},
		{"vendor.min.0badc0de.js", "vendor.min.js", true},
		{"app.css", "app.css", false},
		{"app.v2.css", "app.v2.css", false},
		{"app.zzzzzzzz.css", "app.zzzzzzzz.css", false},
	}
	for _, tt := range tests {
		source, ok := SourceName(tt.name)
		if source != tt.source || ok != tt.ok {
			t.Errorf("SourceName(%q) = %q, %v, want %q, %v", tt.name, source, ok, tt.source, tt.ok)
		}
	}
}

func TestManifestResolve(t *testing.T) {
	m := NewManifest(map[string]string{"app.css": "app.3f9a1c2e.css"})

	if got := m.Resolve("app.css"); got != "app.3f9a1c2e.css" {
		t.Errorf("Resolve(app.css) = %q", got)
	}
	if got := m.Resolve("other.css"); got != "other.css" {
		t.Errorf("Resolve(other.css) = %q", got)
	}
	if !m.Has("app.css") || m.Has("other.css") || m.Len() != 1 {
		t.Errorf("Has/Len mismatch: %d entries", m.Len())
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{"app.js": "app.1234abcd.js"}`)},
		"broken.json":   {Data: []byte("not json")},
	}

	m, err := Load(fsys, "manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Resolve("app.js"); got != "app.1234abcd.js" {
		t.Errorf("Resolve(app.js) = %q", got)
	}

	if _, err := Load(fsys, "broken.json"); ssrerrors.CodeOf(err) != "E162" {
		t.Errorf("broken manifest err = %v, want E162", err)
	}
}

func TestScan(t *testing.T) {
	fsys := fstest.MapFS{
		"app.3f9a1c2e.css":    {Data: []byte("body{}")},
		"js/main.0badc0de.js": {Data: []byte("")},
		"robots.txt":          {Data: []byte("")},
	}
	m, err := Scan(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	if got := m.Resolve("js/main.js"); got != "js/main.0badc0de.js" {
		t.Errorf("Resolve(js/main.js) = %q", got)
	}
}

func TestForDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.3f9a1c2e.css"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	r, err := ForDir(dir, "/static/")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("app.css"); got != "/static/app.3f9a1c2e.css" {
		t.Errorf("scanned Asset = %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`{"app.css": "app.ffffffff.css"}`), 0644); err != nil {
		t.Fatal(err)
	}
	r, err = ForDir(dir, "/static/")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("app.css"); got != "/static/app.ffffffff.css" {
		t.Errorf("manifest Asset = %q, the manifest should win over scanning", got)
	}

	r, err = ForDir(filepath.Join(dir, "missing"), "/s/")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Asset("app.css"); got != "/s/app.css" {
		t.Errorf("passthrough Asset = %q", got)
	}
}

func TestResolverScript(t *testing.T) {
	r := NewResolver(NewManifest(map[string]string{"app.js": "app.1234abcd.js"}), "/static/")

	sc := r.Script("app.js")
	if sc.Src != "/static/app.1234abcd.js" || !sc.Module || !sc.Defer {
		t.Errorf("Script = %+v", sc)
	}
	if !r.Fingerprinted("app.js") || r.Fingerprinted("other.js") {
		t.Error("Fingerprinted mismatch")
	}
}
