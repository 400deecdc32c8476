package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(md string) string {
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineCodeIsNotFormatted(t *testing.T) {
	got := Inline("use `**kwargs` here")
	if got != "use <code>**kwargs</code> here" {
		t.Errorf("got %q", got)
	}
}

func TestInlineEscapesHTML(t *testing.T) {
	got := Inline(`<script>alert("x")</script>`)
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML survived: %q", got)
	}
}

func TestInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[site](https://example.com)", `<a href="https://example.com">site</a>`},
		{"[new tab](https://example.com)^", `<a href="https://example.com" target="_blank" rel="noopener noreferrer">new tab</a>`},
		{"[local](/about/)", `<a href="/about/">local</a>`},
		{"[bad](javascript:void)", "bad"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLinkURLKeepsUnderscores(t *testing.T) {
	got := Inline("[docs](https://example.com/a_b_c)")
	if strings.Contains(got, "<em>") {
		t.Errorf("emphasis applied inside href: %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com":  "https://example.com",
		"mailto:me@example.com": "mailto:me@example.com",
		"#top":                 "#top",
		"javascript:alert(1)":  "",
		"data:text/html,hi":    "",
		"":                     "",
	}
	for in, want := range tests {
		if got := SafeURL(in); got != want {
			t.Errorf("SafeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"paragraphs", "one\ntwo\n\nthree", "<p>one two</p><p>three</p>"},
		{"headings", "# A\n## B\n### C", "<h1>A</h1><h2>B</h2><h3>C</h3>"},
		{"list", "- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"ordered", "1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"quote", "> a\n> b", "<blockquote>a b</blockquote>"},
		{"rule", "a\n---\nb", "<p>a</p><hr/><p>b</p>"},
		{"list after paragraph", "intro\n- a", "<p>intro</p><ul><li>a</li></ul>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(tt.input); got != tt.expected {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render("```go\nx := a < b && **c**\n```\nafter")
	want := `<pre class="code"><code class="language-go">x := a &lt; b &amp;&amp; **c**` + "\n" + `</code></pre><p>after</p>`
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestRenderUnclosedCodeBlock(t *testing.T) {
	got := render("```\ncode")
	if !strings.HasSuffix(got, "</code></pre>") {
		t.Errorf("code block not closed: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("hello *world*").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p>hello <em>world</em></p>" {
		t.Errorf("got %q", buf.String())
	}
}
