package render

import "strings"

// RenderToString renders a call into a single string.
//
// If the page returns a *Response it is returned instead and the string is
// empty; callers must check it first. A Response emitted by a nested
// component after rendering started is dropped: the buffered string has
// already been chosen as the delivery mode. Errors are returned directly.
func RenderToString(s *Session, c Call) (string, *Response, error) {
	t := startTracking(s, ModeString)

	result, resp, err := prepare(s, c)
	if err != nil {
		t.finish(err)
		return "", nil, err
	}
	if resp != nil {
		t.finish(nil)
		return "", resp, nil
	}

	var b strings.Builder
	start := pageStart{s: s, isPage: c.IsPage}
	dest := DestinationFunc(func(chunk Chunk) {
		if s.Cancelled() {
			return
		}
		if p := start.prefix(chunk); p != "" {
			b.WriteString(p)
			t.chunk(len(p))
		}
		if _, ok := chunk.(*Response); ok {
			return
		}
		t.chunk(writeChunkString(&b, chunk))
	})

	if err := result.Render(s, dest); err != nil {
		t.finish(err)
		return "", nil, err
	}
	if err := s.Err(); err != nil {
		t.finish(err)
		return "", nil, err
	}

	t.finish(nil)
	return b.String(), nil, nil
}
