package assets

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

// ManifestFile is the manifest name looked up in a static directory.
const ManifestFile = "manifest.json"

// Manifest maps source names to fingerprinted names. It is read-only
// once built and safe for concurrent use.
type Manifest struct {
	entries map[string]string
}

// NewManifest copies entries into a manifest.
func NewManifest(entries map[string]string) *Manifest {
	m := &Manifest{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// Load reads a manifest of the form {"app.css": "app.3f9a1c2e.css"}.
func Load(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, ssrerrors.New("E162").WithDetail(name).Wrap(err)
	}
	return &Manifest{entries: entries}, nil
}

// Scan builds a manifest from the fingerprinted files in fsys. When two
// files share a source name the lexically last one wins.
func Scan(fsys fs.FS) (*Manifest, error) {
	m := &Manifest{entries: make(map[string]string)}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if source, ok := SourceName(p); ok {
			m.entries[source] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadDir loads dir/manifest.json, or scans dir when it has no manifest.
func LoadDir(dir string) (*Manifest, error) {
	fsys := os.DirFS(dir)
	m, err := Load(fsys, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Scan(fsys)
	}
	return m, err
}

// Resolve returns the fingerprinted name for source, or source itself.
func (m *Manifest) Resolve(source string) string {
	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Has reports whether the manifest knows source.
func (m *Manifest) Has(source string) bool {
	_, ok := m.entries[source]
	return ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }
