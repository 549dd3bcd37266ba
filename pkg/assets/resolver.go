package assets

import (
	"os"

	"github.com/vango-dev/ssr/pkg/render"
)

// Resolver turns source names into URL paths under a prefix.
type Resolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver resolves through m under prefix. A nil m passes names
// through unchanged, which suits development builds without hashing.
func NewResolver(m *Manifest, prefix string) *Resolver {
	if m == nil {
		m = NewManifest(nil)
	}
	return &Resolver{manifest: m, prefix: prefix}
}

// ForDir builds a resolver for the static directory dir served under
// prefix. A missing directory yields a passthrough resolver.
func ForDir(dir, prefix string) (*Resolver, error) {
	if dir == "" {
		return NewResolver(nil, prefix), nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewResolver(nil, prefix), nil
	}
	m, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return NewResolver(m, prefix), nil
}

// Asset returns the URL path of source.
//
//	r.Asset("app.css") // "/static/app.3f9a1c2e.css"
func (r *Resolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}

// Fingerprinted reports whether source resolves to a hashed file.
func (r *Resolver) Fingerprinted(source string) bool {
	return r.manifest.Has(source)
}

// Script returns a deferred module script tag for source.
func (r *Resolver) Script(source string) render.ScriptTag {
	return render.ScriptTag{Src: r.Asset(source), Module: true, Defer: true}
}
