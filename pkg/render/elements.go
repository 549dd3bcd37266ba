package render

import "strings"

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":    true,
	"base":    true,
	"br":      true,
	"col":     true,
	"command": true,
	"embed":   true,
	"hr":      true,
	"img":     true,
	"input":   true,
	"keygen":  true,
	"link":    true,
	"meta":    true,
	"param":   true,
	"source":  true,
	"track":   true,
	"wbr":     true,
}

// isVoidElement reports whether tag is a void element. Case-insensitive.
func isVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// booleanAttrs are rendered as a bare name when true.
var booleanAttrs = map[string]bool{
	"allowfullscreen":         true,
	"async":                   true,
	"autofocus":               true,
	"autoplay":                true,
	"checked":                 true,
	"controls":                true,
	"default":                 true,
	"defer":                   true,
	"disabled":                true,
	"disablepictureinpicture": true,
	"disableremoteplayback":   true,
	"formnovalidate":          true,
	"hidden":                  true,
	"inert":                   true,
	"ismap":                   true,
	"itemscope":               true,
	"loop":                    true,
	"multiple":                true,
	"muted":                   true,
	"nomodule":                true,
	"novalidate":              true,
	"open":                    true,
	"playsinline":             true,
	"readonly":                true,
	"required":                true,
	"reversed":                true,
	"scoped":                  true,
	"seamless":                true,
	"selected":                true,
}

// isBooleanAttr reports whether name is a boolean attribute. Case-insensitive.
func isBooleanAttr(name string) bool {
	return booleanAttrs[strings.ToLower(name)]
}

// enumAttrs take the literal "false" instead of being omitted when false.
// The SVG names are matched case-insensitively like the HTML ones.
var enumAttrs = map[string]bool{
	"contenteditable":           true,
	"draggable":                 true,
	"spellcheck":                true,
	"value":                     true,
	"autoreverse":               true,
	"externalresourcesrequired": true,
	"focusable":                 true,
	"preservealpha":             true,
}

// isEnumAttr reports whether name renders false as "false".
func isEnumAttr(name string) bool {
	return enumAttrs[strings.ToLower(name)]
}

// staticDirectives can only be applied by the template compiler.
var staticDirectives = map[string]bool{
	"set:html": true,
	"set:text": true,
}
