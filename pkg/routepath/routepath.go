// Package routepath normalizes page paths that arrive as data rather than
// as request URLs: the WebSocket ?path= query, prerender route lists and
// CLI arguments.
package routepath

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrNotRelative          = errors.New("routepath: path must start with / and name no host")
	ErrBackslash            = errors.New("routepath: path contains backslash")
	ErrNullByte             = errors.New("routepath: path contains null byte")
	ErrInvalidPercentEscape = errors.New("routepath: invalid percent escape sequence")
	ErrEscapesRoot          = errors.New("routepath: path escapes root via ..")
)

// Clean returns the canonical form of a page path and its query, without
// the leading "?".
//
// Repeated slashes collapse, "." and ".." segments resolve and the
// trailing slash is dropped (except for "/"). An empty input is "/".
// Absolute URLs, protocol-relative paths, backslashes, NUL bytes,
// malformed percent escapes and ".." above the root are rejected.
func Clean(input string) (path, query string, err error) {
	if input == "" {
		return "/", "", nil
	}
	path, query, _ = strings.Cut(input, "?")

	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "", "", ErrNotRelative
	}
	if strings.Contains(path, `\`) {
		return "", "", ErrBackslash
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", "", ErrNullByte
	}
	if err := checkPercentEscapes(path); err != nil {
		return "", "", err
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return "", "", ErrEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}
	return "/" + strings.Join(segments, "/"), query, nil
}

func checkPercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
