package render

import "strings"

// HeadData contains the static part of a document head.
type HeadData struct {
	// Title is the page title
	Title string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// Links contains link tags (favicon, preload, etc.)
	Links []LinkTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Styles contains inline CSS styles
	Styles []string

	// Scripts contains script tags to include
	Scripts []ScriptTag
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string // name attribute
	Content   string // content attribute
	Property  string // property attribute (for OpenGraph)
	HTTPEquiv string // http-equiv attribute
	Charset   string // charset attribute
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string // rel attribute
	Href        string // href attribute
	Type        string // type attribute
	Sizes       string // sizes attribute
	CrossOrigin string // crossorigin attribute
	Media       string // media attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Type   string // type attribute
	Defer  bool   // defer attribute
	Async  bool   // async attribute
	Module bool   // type="module"
	Inline string // inline script content
}

// Head renders <head> with data followed by the head fragments hoisted by
// propagators. It reads Session.ExtraHead at render time, so it must render
// after BufferHeadContent, which every page adapter guarantees.
func Head(data HeadData) TemplateResult {
	return TemplateFunc(func(s *Session, d Destination) error {
		nl := "\n"
		if s.CompressHTML() {
			nl = ""
		}

		var b strings.Builder
		line := func(markup string) {
			b.WriteString(markup)
			b.WriteString(nl)
		}

		line("<head>")
		line(`<meta charset="utf-8">`)
		line(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if data.Title != "" {
			line("<title>" + escapeHTML(data.Title) + "</title>")
		}
		for _, m := range data.Meta {
			line("<meta" + string(SpreadAttributes(Attrs{
				"charset":    nonEmpty(m.Charset),
				"name":       nonEmpty(m.Name),
				"property":   nonEmpty(m.Property),
				"http-equiv": nonEmpty(m.HTTPEquiv),
				"content":    nonEmpty(m.Content),
			})) + ">")
		}
		for _, l := range data.Links {
			line("<link" + string(SpreadAttributes(Attrs{
				"rel":         nonEmpty(l.Rel),
				"href":        nonEmpty(l.Href),
				"type":        nonEmpty(l.Type),
				"sizes":       nonEmpty(l.Sizes),
				"crossorigin": nonEmpty(l.CrossOrigin),
				"media":       nonEmpty(l.Media),
			})) + ">")
		}
		for _, href := range data.StyleSheets {
			line(`<link rel="stylesheet" href="` + escapeAttr(href) + `">`)
		}
		for _, style := range data.Styles {
			line("<style>" + style + "</style>")
		}
		for _, sc := range data.Scripts {
			line(scriptTag(sc))
		}
		for _, frag := range s.ExtraHead() {
			line(frag)
		}
		line("</head>")

		d.Write(Text(b.String()))
		return nil
	})
}

func scriptTag(sc ScriptTag) string {
	typ := sc.Type
	if sc.Module {
		typ = "module"
	}
	return "<script" + string(SpreadAttributes(Attrs{
		"src":   nonEmpty(sc.Src),
		"type":  nonEmpty(typ),
		"defer": sc.Defer,
		"async": sc.Async,
	})) + ">" + sc.Inline + "</script>"
}

// nonEmpty maps "" to nil so SpreadAttributes omits the attribute.
func nonEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// DocumentData configures Document.
type DocumentData struct {
	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	Head HeadData
}

// Document returns a page factory that wraps the default slot in a full
// HTML document. The doctype is left to the delivery adapter.
func Document(data DocumentData) Factory {
	lang := data.Lang
	if lang == "" {
		lang = "en"
	}
	return func(s *Session, _ Props, slots Slots) (any, error) {
		nl := Text("\n")
		if s.CompressHTML() {
			nl = ""
		}
		return Template(
			Text(`<html lang="`+escapeAttr(lang)+`">`), nl,
			Head(data.Head),
			Text("<body>"), nl,
			slots.Render(DefaultSlot),
			nl, Text("</body>"), nl,
			Text("</html>"),
		), nil
	}
}
