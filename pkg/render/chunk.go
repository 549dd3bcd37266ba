package render

import (
	"net/http"
	"strings"
)

// Chunk is one unit of output written to a Destination.
// It is one of Text, Bytes or *Response.
type Chunk interface {
	isChunk()
}

// Text is a chunk of markup. It is written verbatim.
type Text string

// Bytes is a chunk of already-encoded markup.
type Bytes []byte

func (Text) isChunk()      {}
func (Bytes) isChunk()     {}
func (*Response) isChunk() {}

// Response is an HTTP response a page returns instead of markup.
//
// As a factory result it halts rendering before anything is written. As a
// chunk it is only legal as the very first unit of output.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewRedirect returns a redirect response.
func NewRedirect(location string, status int) *Response {
	if status == 0 {
		status = http.StatusFound
	}
	h := make(http.Header)
	h.Set("Location", location)
	return &Response{Status: status, Header: h}
}

// IsRedirect reports whether the response is a 3xx with a Location.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400 && r.Header.Get("Location") != ""
}

// ServeHTTP writes the response to w.
func (r *Response) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 {
		w.Write(r.Body)
	}
}

// chunkBytes encodes a markup chunk. Responses encode to nil.
func chunkBytes(c Chunk) []byte {
	switch v := c.(type) {
	case Text:
		return []byte(v)
	case Bytes:
		return v
	default:
		return nil
	}
}

// writeChunkString appends a markup chunk to b and returns the byte count.
func writeChunkString(b *strings.Builder, c Chunk) int {
	switch v := c.(type) {
	case Text:
		b.WriteString(string(v))
		return len(v)
	case Bytes:
		b.Write(v)
		return len(v)
	default:
		return 0
	}
}

// chunkPrefix returns up to n leading bytes of a markup chunk.
func chunkPrefix(c Chunk, n int) string {
	switch v := c.(type) {
	case Text:
		if len(v) > n {
			return string(v[:n])
		}
		return string(v)
	case Bytes:
		if len(v) > n {
			return string(v[:n])
		}
		return string(v)
	default:
		return ""
	}
}
