package render

// Destination receives chunks in document order.
//
// Write has no return value: implementations report failures through the
// session (Session.Fail) so rendering stops at the next check instead of
// unwinding through every component.
type Destination interface {
	Write(chunk Chunk)
}

// DestinationFunc adapts a function to Destination.
type DestinationFunc func(chunk Chunk)

// Write calls f(chunk).
func (f DestinationFunc) Write(chunk Chunk) {
	f(chunk)
}

const doctype = "<!DOCTYPE html>"

// pageStart inserts the doctype ahead of the first chunk of a page.
// It is used by every delivery adapter so the rule stays identical.
type pageStart struct {
	s       *Session
	isPage  bool
	started bool
}

// prefix returns the markup to write before c, if any.
func (p *pageStart) prefix(c Chunk) string {
	if !p.isPage || p.started {
		return ""
	}
	p.started = true
	if p.s.Partial() || hasDoctype(c) {
		return ""
	}
	if p.s.CompressHTML() {
		return doctype
	}
	return doctype + "\n"
}

// hasDoctype reports whether c starts with a doctype declaration,
// ignoring case.
func hasDoctype(c Chunk) bool {
	const decl = "<!doctype"
	head := chunkPrefix(c, len(decl))
	if len(head) < len(decl) {
		return false
	}
	for i := 0; i < len(decl); i++ {
		ch := head[i]
		if 'A' <= ch && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		if ch != decl[i] {
			return false
		}
	}
	return true
}
