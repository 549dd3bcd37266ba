package render

import (
	"fmt"
	"strconv"
)

// Slots are the children passed to a component, by slot name.
type Slots map[string]any

// DefaultSlot is the slot name for unnamed children.
const DefaultSlot = "default"

// Has reports whether the slot was provided.
func (sl Slots) Has(name string) bool {
	_, ok := sl[name]
	return ok
}

// Render returns the named slot as a template. Missing slots render nothing.
func (sl Slots) Render(name string) TemplateResult {
	return Template(sl[name])
}

// TemplateFunc adapts a function to TemplateResult.
type TemplateFunc func(s *Session, d Destination) error

// Render calls f(s, d).
func (f TemplateFunc) Render(s *Session, d Destination) error {
	return f(s, d)
}

// Template returns a template that renders parts in order.
//
// Parts may be:
//   - Text, Bytes or *Response: written as-is
//   - string and other values: escaped text
//   - TemplateResult (including *Instance): rendered in place
//   - *HeadAndContent: its content rendered in place
//   - []any or []TemplateResult: siblings rendered concurrently, output in order
//   - nil or false: nothing
func Template(parts ...any) TemplateResult {
	return template(parts)
}

type template []any

func (t template) Render(s *Session, d Destination) error {
	for _, part := range t {
		if err := s.Err(); err != nil {
			return err
		}
		if err := renderPart(s, d, part); err != nil {
			return err
		}
	}
	return nil
}

// Each maps items to parts rendered as concurrent siblings.
func Each[T any](items []T, fn func(i int, item T) any) TemplateResult {
	parts := make([]any, len(items))
	for i, item := range items {
		parts[i] = fn(i, item)
	}
	return siblings(parts)
}

// Parallel renders parts as concurrent siblings in document order.
func Parallel(parts ...any) TemplateResult {
	return siblings(parts)
}

type siblings []any

func (sb siblings) Render(s *Session, d Destination) error {
	return renderSiblings(s, d, sb)
}

func renderPart(s *Session, d Destination, part any) error {
	switch v := part.(type) {
	case nil:
		return nil
	case Chunk:
		d.Write(v)
	case string:
		if v != "" {
			d.Write(Escape(v))
		}
	case TemplateResult:
		return v.Render(s, d)
	case *HeadAndContent:
		variant, err := Classify(s.Route(), v)
		if err != nil {
			return err
		}
		return variant.Result.Render(s, d)
	case []any:
		return renderSiblings(s, d, v)
	case []TemplateResult:
		items := make([]any, len(v))
		for i, r := range v {
			items[i] = r
		}
		return renderSiblings(s, d, items)
	case bool:
		if v {
			d.Write(Text("true"))
		}
	case int:
		d.Write(Text(strconv.Itoa(v)))
	case fmt.Stringer:
		d.Write(Escape(v.String()))
	default:
		d.Write(Escape(fmt.Sprint(v)))
	}
	return nil
}

// renderSiblings renders the first item directly and every later item
// through a BufferedRenderer, then flushes them in order. Later items run
// while earlier ones are still rendering.
func renderSiblings(s *Session, d Destination, items []any) error {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return renderPart(s, d, items[0])
	}

	buffered := make([]*BufferedRenderer, len(items))
	for i := 1; i < len(items); i++ {
		item := items[i]
		buffered[i] = NewBufferedRenderer(d, func(bd Destination) error {
			if err := s.Err(); err != nil {
				return err
			}
			return renderPart(s, bd, item)
		})
	}

	if err := renderPart(s, d, items[0]); err != nil {
		s.Fail(err)
		return err
	}
	for _, b := range buffered[1:] {
		if err := b.Flush(); err != nil {
			s.Fail(err)
			return err
		}
	}
	return nil
}
