package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "plain text", input: "Hello, World!", expected: "Hello, World!"},
		{name: "ampersand", input: "Tom & Jerry", expected: "Tom &amp; Jerry"},
		{name: "angle brackets", input: "a < b > c", expected: "a &lt; b &gt; c"},
		{name: "quotes", input: `say "it's"`, expected: "say &quot;it&#39;s&quot;"},
		{
			name:     "script tag",
			input:    "<script>alert('xss')</script>",
			expected: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name:     "already escaped entity is escaped again",
			input:    "&amp;",
			expected: "&amp;amp;",
		},
		{name: "unicode preserved", input: "Hello 世界 🌍", expected: "Hello 世界 🌍"},
		{name: "newlines preserved", input: "a\nb", expected: "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "btn primary", expected: "btn primary"},
		{name: "quote breakout", input: `" onload="x`, expected: "&quot; onload=&quot;x"},
		{name: "whitespace", input: "a\nb\rc\td", expected: "a&#10;b&#13;c&#9;d"},
		{name: "url", input: "/search?q=a&b=c", expected: "/search?q=a&amp;b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeAttr(tt.input); got != tt.expected {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeReturnsText(t *testing.T) {
	var c Chunk = Escape("<b>")
	if got, ok := c.(Text); !ok || got != "&lt;b&gt;" {
		t.Errorf("Escape(<b>) = %#v", c)
	}
}

func BenchmarkEscapeHTML(b *testing.B) {
	s := `<script>alert("xss")</script> & more content here`
	for i := 0; i < b.N; i++ {
		escapeHTML(s)
	}
}
