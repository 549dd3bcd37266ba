package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vango-dev/ssr/pkg/assets"
)

// StaticHandler serves files below a directory. Requests that name a
// directory or try to leave the root get a 404.
//
// Fingerprinted files such as app.3f9a1c2e.css are cached for a year;
// everything else must revalidate after an hour.
type StaticHandler struct {
	fs     http.FileSystem
	prefix string
}

// NewStaticHandler serves dir for request paths below prefix.
func NewStaticHandler(dir, prefix string) *StaticHandler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &StaticHandler{fs: http.Dir(dir), prefix: prefix}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	rel, ok := h.relPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := h.fs.Open("/" + rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if isFingerprinted(rel) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
}

// relPath maps a request path to a slash-separated path inside the root.
func (h *StaticHandler) relPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, h.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, h.prefix)
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, `\`) {
		return "", false
	}
	// Dot segments are rejected, not cleaned away, so a request never
	// changes meaning on its way to the filesystem.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}
	clean := path.Clean(rel)
	if osPath := filepath.FromSlash(clean); filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

func isFingerprinted(name string) bool {
	_, ok := assets.SourceName(path.Base(name))
	return ok
}

// staticDirExists reports whether dir is an existing directory.
func staticDirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
