package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/resource"
)

// writer accumulates HTML and keeps the first write error.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *writer) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *writer) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *writer) textf(format string, args ...any) { h.text(fmt.Sprintf(format, args...)) }

// tag writes an opening tag. attrs are name/value pairs; values are
// escaped, and a pair with an empty value is skipped.
func (h *writer) tag(name string, attrs ...string) {
	h.raw("<" + name)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		h.raw(" " + attrs[i] + `="` + templ.EscapeString(attrs[i+1]) + `"`)
	}
	h.raw(">")
}

func (h *writer) end(name string) { h.raw("</" + name + ">") }

// el writes a complete element with escaped text content.
func (h *writer) el(name, text string, attrs ...string) {
	h.tag(name, attrs...)
	h.text(text)
	h.end(name)
}

func (h *writer) component(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func (h *writer) markdown(md string) { h.component(markdown.Markdown(md)) }

// component adapts a body writer to templ.Component.
func component(fn func(h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

// PathEscape wraps url.PathEscape for use in links.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// PillClass returns the CSS class of a filter pill.
func PillClass(active bool) string {
	if active {
		return "pill active"
	}
	return "pill"
}

// FormatDate renders a stored timestamp or YYYY-MM-DD date for display.
func FormatDate(rec resource.Record, field string) string {
	if t, ok := folio.RecordTime(rec, field); ok {
		return t.Format("January 2, 2006")
	}
	if t, err := time.Parse("2006-01-02", rec.String(field)); err == nil {
		return t.Format("January 2, 2006")
	}
	return rec.String(field)
}

// Excerpt returns the excerpt field, or the first n characters of the body.
func Excerpt(rec resource.Record, n int) string {
	if e := rec.String("excerpt"); e != "" {
		return e
	}
	body := strings.Join(strings.Fields(rec.String("content")+" "+rec.String("description")), " ")
	r := []rune(body)
	if len(r) <= n {
		return body
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// filterURL builds a list URL with a single query parameter, or none when
// value is empty.
func filterURL(base, key, value string) string {
	if value == "" {
		return base
	}
	return base + "?" + url.Values{key: {value}}.Encode()
}

func recordTitle(rec resource.Record) string {
	for _, f := range []string{"title", "subject", "name"} {
		if v := rec.String(f); v != "" {
			return v
		}
	}
	return rec.ID()
}

func isVideo(rec resource.Record, m *resource.MediaSpec) bool {
	if m == nil {
		return false
	}
	if m.KindField != "" {
		return rec.String(m.KindField) == string(resource.MediaVideo)
	}
	return len(m.Kinds) > 0 && m.Kinds[0] == resource.MediaVideo
}

// media writes an img or video element for the record's media field.
func (h *writer) media(rec resource.Record, m *resource.MediaSpec, alt string) {
	if m == nil {
		return
	}
	src := rec.String(m.Field)
	if src == "" {
		return
	}
	if isVideo(rec, m) {
		h.tag("video", "src", src, "controls", "controls", "preload", "metadata")
		h.end("video")
		return
	}
	h.tag("img", "src", src, "alt", alt, "loading", "lazy", "decoding", "async")
}
