package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Attrs are element attributes.
type Attrs map[string]any

// Element returns a template rendering <tag attrs>children</tag>.
//
// Void elements without children render as a single self-closing tag. A string
// "dangerouslySetInnerHTML" attribute replaces the children verbatim. On
// script elements, a map "define:vars" attribute is turned into const
// declarations ahead of the children.
func Element(tag string, attrs Attrs, children ...any) TemplateResult {
	return TemplateFunc(func(s *Session, d Destination) error {
		return renderElement(s, d, tag, attrs, children)
	})
}

func renderElement(s *Session, d Destination, tag string, attrs Attrs, children []any) error {
	props := attrs
	var vars map[string]any
	if dv, ok := attrs["define:vars"]; ok {
		props = make(Attrs, len(attrs))
		for k, v := range attrs {
			props[k] = v
		}
		delete(props, "define:vars")
		switch tag {
		case "style":
			delete(props, "is:global")
			delete(props, "is:scoped")
		case "script":
			delete(props, "hoist")
			vars, _ = dv.(map[string]any)
		}
	}

	attrText := string(spreadAttributes(s.Logger(), props))
	raw, hasRaw := props["dangerouslySetInnerHTML"].(string)
	if len(children) == 0 && !hasRaw && vars == nil && isVoidElement(tag) {
		d.Write(Text("<" + tag + attrText + " />"))
		return nil
	}
	open := "<" + tag + attrText + ">"

	d.Write(Text(open))
	if hasRaw {
		d.Write(Text(raw))
	} else {
		if vars != nil {
			d.Write(DefineScriptVars(vars) + "\n")
		}
		if err := Template(children...).Render(s, d); err != nil {
			return err
		}
	}
	d.Write(Text("</" + tag + ">"))
	return nil
}

// SpreadAttributes renders attributes in key order. Keys starting with "_",
// "key", "dangerouslySetInnerHTML" and function values are skipped.
// Warnings go to slog.Default; Element logs through the session instead.
func SpreadAttributes(attrs Attrs) Text {
	return spreadAttributes(slog.Default(), attrs)
}

func spreadAttributes(logger *slog.Logger, attrs Attrs) Text {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := attrs[k]
		if strings.HasPrefix(k, "_") || k == "key" || k == "dangerouslySetInnerHTML" || isFunc(v) {
			continue
		}
		b.WriteString(string(addAttribute(logger, k, v)))
	}
	return Text(b.String())
}

// AddAttribute renders one attribute with a leading space, or "" when the
// attribute should be omitted.
func AddAttribute(key string, value any) Text {
	return addAttribute(slog.Default(), key, value)
}

func addAttribute(logger *slog.Logger, key string, value any) Text {
	if value == nil {
		return ""
	}
	if b, ok := value.(bool); ok && !b {
		if isEnumAttr(key) {
			return Text(" " + key + `="false"`)
		}
		return ""
	}

	if staticDirectives[key] {
		logger.Warn("directive cannot be applied dynamically and is not rendered",
			"directive", key,
			"hint", "use the static attribute syntax instead of spreading it")
		return ""
	}

	switch key {
	case "class:list":
		list := serializeListValue(value)
		if list == "" {
			return ""
		}
		return Text(` class="` + escapeAttr(list) + `"`)
	case "style":
		if style, ok := styleString(value); ok {
			return Text(` style="` + escapeAttr(style) + `"`)
		}
	case "className":
		key = "class"
	case "htmlFor":
		key = "for"
	}

	if b, ok := value.(bool); ok && b && (strings.HasPrefix(key, "data-") || isBooleanAttr(key)) {
		return Text(" " + key)
	}
	if t, ok := value.(Text); ok {
		return Text(" " + key + `="` + string(t) + `"`)
	}
	return Text(" " + key + `="` + escapeAttr(attrToString(value)) + `"`)
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// serializeListValue flattens strings, slices and truthy map keys into a
// de-duplicated, space separated class list. First occurrence wins.
func serializeListValue(value any) string {
	seen := make(map[string]bool)
	var out []string

	var push func(item any)
	push = func(item any) {
		switch v := item.(type) {
		case nil:
		case bool:
			if v {
				push("true")
			}
		case string:
			for _, name := range strings.Fields(v) {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		case []string:
			for _, x := range v {
				push(x)
			}
		case []any:
			for _, x := range v {
				push(x)
			}
		case map[string]bool:
			for _, k := range sortedKeys(v) {
				if v[k] {
					push(k)
				}
			}
		case map[string]any:
			for _, k := range sortedKeys(v) {
				if truthy(v[k]) {
					push(k)
				}
			}
		default:
			push(fmt.Sprint(v))
		}
	}
	push(value)
	return strings.Join(out, " ")
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// styleString renders object styles. Strings are not handled here.
func styleString(value any) (string, bool) {
	switch v := value.(type) {
	case map[string]any:
		return toStyleString(v), true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, x := range v {
			m[k] = x
		}
		return toStyleString(m), true
	case []any:
		if len(v) == 2 {
			if m, ok := v[0].(map[string]any); ok {
				return toStyleString(m) + ";" + fmt.Sprint(v[1]), true
			}
		}
	}
	return "", false
}

func toStyleString(m map[string]any) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		name := k
		if !strings.HasPrefix(k, "--") {
			name = kebab(k)
		}
		parts = append(parts, name+":"+fmt.Sprint(m[k]))
	}
	return strings.Join(parts, ";")
}

// kebab converts camelCase to kebab-case.
func kebab(k string) string {
	if strings.ToLower(k) == k {
		return k
	}
	var b strings.Builder
	for _, r := range k {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DefineScriptVars renders vars as JavaScript const declarations, one per
// line, in key order. "</script>" in values is neutralized.
func DefineScriptVars(vars map[string]any) Text {
	var b strings.Builder
	for _, k := range sortedKeys(vars) {
		data, err := json.Marshal(vars[k])
		if err != nil {
			data = []byte("undefined")
		}
		value := strings.ReplaceAll(string(data), "</script>", `\x3C/script>`)
		b.WriteString("const " + toIdent(k) + " = " + value + ";\n")
	}
	return Text(b.String())
}

// toIdent converts most strings to a valid JavaScript identifier by
// dropping non-word characters and upper-casing the letter after each.
func toIdent(k string) string {
	var b strings.Builder
	upper := false
	for _, r := range strings.TrimSpace(k) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			if upper && b.Len() > 0 {
				r = unicode.ToUpper(r)
			}
			upper = false
			b.WriteRune(r)
			continue
		}
		upper = true
	}
	return b.String()
}

// FormatList joins values as "a, b or c".
func FormatList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " or " + values[len(values)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
