// Package markdown renders the small Markdown dialect accepted in long-text
// fields (biography, blog content, descriptions) as a templ component.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic      = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reLink        = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedItem = regexp.MustCompile(`^\d+\.\s`)
)

// Markdown returns a component that renders md as HTML. Raw HTML in md is
// always escaped.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
)

var closers = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
	blockCode:    "</code></pre>",
}

type renderer struct {
	buf  *bytes.Buffer
	open block
}

// enter closes the open block unless it is already b, and opens b.
// It reports whether b was already open.
func (r *renderer) enter(b block, tag string) bool {
	if r.open == b {
		return true
	}
	r.close()
	r.buf.WriteString(tag)
	r.open = b
	return false
}

func (r *renderer) close() {
	r.buf.WriteString(closers[r.open])
	r.open = blockNone
}

// Render writes the HTML for md to buf.
func Render(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if r.open == blockCode {
				r.close()
				continue
			}
			r.close()
			if lang := strings.TrimSpace(line[3:]); lang != "" {
				buf.WriteString(`<pre class="code"><code class="language-` + html.EscapeString(lang) + `">`)
			} else {
				buf.WriteString(`<pre class="code"><code>`)
			}
			r.open = blockCode
			continue
		}
		if r.open == blockCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			r.close()
		case strings.HasPrefix(line, "---"):
			r.close()
			buf.WriteString("<hr/>")
		case heading(line) > 0:
			r.close()
			n := heading(line)
			h := strconv.Itoa(n)
			buf.WriteString("<h" + h + ">" + Inline(strings.TrimSpace(line[n+1:])) + "</h" + h + ">")
		case strings.HasPrefix(line, "- "):
			r.enter(blockList, "<ul>")
			buf.WriteString("<li>" + Inline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrderedItem.MatchString(line):
			r.enter(blockOrdered, "<ol>")
			buf.WriteString("<li>" + Inline(strings.TrimSpace(reOrderedItem.ReplaceAllString(line, ""))) + "</li>")
		case strings.HasPrefix(line, "> "):
			if r.enter(blockQuote, "<blockquote>") {
				buf.WriteByte(' ')
			}
			buf.WriteString(Inline(strings.TrimSpace(line[2:])))
		default:
			if r.enter(blockPara, "<p>") {
				buf.WriteByte(' ')
			}
			buf.WriteString(Inline(trimmed))
		}
	}
	r.close()
}

// heading returns the level of an ATX heading line, or 0.
func heading(line string) int {
	for n := 1; n <= 3; n++ {
		if strings.HasPrefix(line, strings.Repeat("#", n)+" ") {
			return n
		}
	}
	return 0
}

// Inline escapes s and applies links, inline code, bold and italic.
func Inline(s string) string {
	out := html.EscapeString(s)

	// Code spans are swapped for placeholders so emphasis never applies
	// inside them.
	var spans []string
	out = reInlineCode.ReplaceAllStringFunc(out, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	out = outsideTags(out, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1$2</strong>")
		return reItalic.ReplaceAllString(seg, "<em>$1$2</em>")
	})

	for i, span := range spans {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return out
}

// outsideTags applies fn to the text between HTML tags only, so emphasis
// never rewrites an href.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// SafeURL returns raw escaped for an HTML attribute, or "" when its scheme
// is not one of http, https, mailto or tel. Relative and fragment URLs are
// allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
