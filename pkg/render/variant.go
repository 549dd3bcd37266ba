package render

import "sync"

// TemplateResult is a renderable unit. Render performs a depth-first walk of
// its component tree and writes chunks to d in document order.
type TemplateResult interface {
	Render(s *Session, d Destination) error
}

// Props are the properties passed to a component.
type Props map[string]any

// Factory produces the output of one component invocation. It returns a
// *Response, a *HeadAndContent or a TemplateResult; anything else is a
// contract violation reported when the value is classified.
type Factory func(s *Session, props Props, slots Slots) (any, error)

// HeadAndContent is a template result with lazily computed head markup.
type HeadAndContent struct {
	// Head computes the fragment to hoist into the document head.
	Head func() string

	// Content must be a TemplateResult.
	Content any
}

// HeadFragment evaluates Head. A nil Head yields "".
func (h *HeadAndContent) HeadFragment() string {
	if h == nil || h.Head == nil {
		return ""
	}
	return h.Head()
}

// VariantKind discriminates the result of a factory.
type VariantKind uint8

const (
	VariantTemplate VariantKind = iota
	VariantHeadAndContent
	VariantResponse
)

// String returns the kind name.
func (k VariantKind) String() string {
	switch k {
	case VariantTemplate:
		return "Template"
	case VariantHeadAndContent:
		return "HeadAndContent"
	case VariantResponse:
		return "Response"
	default:
		return "Unknown"
	}
}

// Variant is a classified factory result.
type Variant struct {
	Kind VariantKind

	// Response is set for VariantResponse.
	Response *Response

	// HeadAndContent is set for VariantHeadAndContent.
	HeadAndContent *HeadAndContent

	// Result is the template to drive for both template kinds.
	Result TemplateResult
}

// Classify inspects a factory result. It has no side effects and returns
// the same variant for the same value. route names the component in errors.
func Classify(route string, v any) (Variant, error) {
	switch x := v.(type) {
	case *Response:
		if x == nil {
			return Variant{}, contractError(route, v)
		}
		return Variant{Kind: VariantResponse, Response: x}, nil
	case *HeadAndContent:
		if x == nil {
			return Variant{}, contractError(route, v)
		}
		content, ok := x.Content.(TemplateResult)
		if !ok {
			return Variant{}, contractError(route, x.Content)
		}
		return Variant{Kind: VariantHeadAndContent, HeadAndContent: x, Result: content}, nil
	case TemplateResult:
		return Variant{Kind: VariantTemplate, Result: x}, nil
	default:
		return Variant{}, contractError(route, v)
	}
}

// Call describes a top-level render.
type Call struct {
	Factory Factory
	Props   Props
	Slots   Slots
	// IsPage enables doctype insertion and head propagation.
	IsPage bool
	// Route names the page in errors. Defaults to the session route.
	Route string
}

func (c Call) route(s *Session) string {
	if c.Route != "" {
		return c.Route
	}
	return s.Route()
}

// resolve invokes the factory and classifies its result. Nothing is written.
func resolve(s *Session, c Call) (Variant, error) {
	route := c.route(s)
	if c.Factory == nil {
		return Variant{}, contractError(route, nil)
	}
	v, err := c.Factory(s, c.Props, c.Slots)
	if err != nil {
		return Variant{}, componentError(route, err)
	}
	return Classify(route, v)
}

// prepare resolves a call and, for pages that will render markup, runs head
// propagation. A non-nil *Response means the caller must skip rendering.
func prepare(s *Session, c Call) (TemplateResult, *Response, error) {
	v, err := resolve(s, c)
	if err != nil {
		return nil, nil, err
	}
	if v.Kind == VariantResponse {
		return nil, v.Response, nil
	}
	if c.IsPage {
		if err := BufferHeadContent(s); err != nil {
			return nil, nil, err
		}
	}
	return v.Result, nil, nil
}

// Propagator is a component whose initialization may contribute head
// fragments. Init is awaited by BufferHeadContent before the body streams.
type Propagator interface {
	Init(s *Session) (any, error)
}

// PropagatorFunc adapts a function to Propagator.
type PropagatorFunc func(s *Session) (any, error)

// Init calls f(s).
func (f PropagatorFunc) Init(s *Session) (any, error) {
	return f(s)
}

// Instance is a component invocation whose factory runs at most once.
// It is both a TemplateResult and a Propagator: when registered for head
// propagation, the result computed during BufferHeadContent is reused when
// the body renders.
type Instance struct {
	name  string
	call  Call
	once  sync.Once
	value any
	err   error
}

// Component returns an instance of f. name identifies it in errors.
func Component(name string, f Factory, props Props, slots Slots) *Instance {
	return &Instance{
		name: name,
		call: Call{Factory: f, Props: props, Slots: slots, Route: name},
	}
}

// Propagate returns an instance of f registered on s for head propagation.
func Propagate(s *Session, name string, f Factory, props Props, slots Slots) *Instance {
	inst := Component(name, f, props, slots)
	s.AddPropagator(inst)
	return inst
}

// Init invokes the factory once and memoizes its result.
func (i *Instance) Init(s *Session) (any, error) {
	i.once.Do(func() {
		if i.call.Factory == nil {
			i.err = contractError(i.name, nil)
			return
		}
		i.value, i.err = i.call.Factory(s, i.call.Props, i.call.Slots)
		if i.err != nil {
			i.err = componentError(i.name, i.err)
		}
	})
	return i.value, i.err
}

// Render renders the instance output. A Response result is written as a
// chunk so the adapter can apply its response-after-commit policy.
func (i *Instance) Render(s *Session, d Destination) error {
	v, err := i.Init(s)
	if err != nil {
		return err
	}
	variant, err := Classify(i.name, v)
	if err != nil {
		return err
	}
	if variant.Kind == VariantResponse {
		d.Write(variant.Response)
		return nil
	}
	return variant.Result.Render(s, d)
}
