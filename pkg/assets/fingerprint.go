// Package assets maps source file names to their fingerprinted versions
// so pages can link static files that are cached forever.
//
// A fingerprinted file carries a content hash of at least eight hex digits
// before its extension:
//
//	app.css       -> app.3f9a1c2e.css
//	js/main.js    -> js/main.0badc0de.js
//
// The mapping comes from a manifest.json in the static directory or, when
// there is none, from scanning the directory for fingerprinted names:
//
//	r, err := assets.ForDir("public", "/static/")
//	r.Asset("app.css") // "/static/app.3f9a1c2e.css"
package assets

import (
	"path"
	"strings"
)

const minHashLen = 8

// SourceName strips the content hash from a fingerprinted file name.
// It reports false when name carries no hash.
func SourceName(name string) (string, bool) {
	dir, base := path.Split(name)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return name, false
	}
	hash := parts[len(parts)-2]
	if len(hash) < minHashLen {
		return name, false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return name, false
		}
	}
	return dir + strings.Join(parts[:len(parts)-2], ".") + "." + parts[len(parts)-1], true
}
