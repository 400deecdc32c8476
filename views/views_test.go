package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/resource"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testPage() folio.Page {
	return folio.Page{
		Site: folio.Site{Name: "Studio", URL: "https://example.com"},
		Meta: folio.PageMeta{Title: "Blog", URL: "https://example.com/blog/", OGType: "website"},
		CSRF: "tok",
	}
}

func TestDefaultSetsEveryView(t *testing.T) {
	v := Default()
	if v.Home == nil || v.About == nil || v.Portfolio == nil || v.Blog == nil || v.Post == nil ||
		v.Events == nil || v.Projects == nil || v.Volunteer == nil || v.Contact == nil ||
		v.AdminLogin == nil || v.AdminDashboard == nil || v.AdminList == nil || v.AdminForm == nil ||
		v.AdminSettings == nil || v.NotFound == nil || v.ServerError == nil {
		t.Fatal("Default left a view unset")
	}
}

func TestRecordTextIsEscaped(t *testing.T) {
	post := resource.Record{
		"id":      "p1",
		"title":   `<script>alert(1)</script>`,
		"content": "**hi** <b>raw</b>",
		"status":  "published",
	}
	out := renderString(t, Post(folio.PostPage{Page: testPage(), Post: post}))
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("title was not escaped")
	}
	if strings.Contains(out, "<b>raw</b>") {
		t.Error("raw HTML in content was not escaped")
	}
	if !strings.Contains(out, "<strong>hi</strong>") {
		t.Error("markdown was not rendered")
	}
	if !strings.Contains(out, `application/ld+json`) {
		t.Error("missing JSON-LD")
	}
}

func TestBlogMarksActiveTag(t *testing.T) {
	out := renderString(t, Blog(folio.BlogPage{
		Page: testPage(),
		Tags: []string{"go", "web"},
		Tag:  "go",
		Posts: []resource.Record{
			{"id": "a b", "title": "First", "excerpt": "Intro"},
		},
	}))
	if !strings.Contains(out, `<a href="/blog/?tag=go" class="pill active">go</a>`) {
		t.Errorf("active tag pill missing:\n%s", out)
	}
	if !strings.Contains(out, `href="/blog/a%20b/"`) {
		t.Error("post id not path-escaped")
	}
}

func TestPublicFormHidesOperatorFields(t *testing.T) {
	out := renderString(t, Volunteer(folio.PublicFormPage{
		Page:     testPage(),
		Schema:   resource.Volunteers,
		Draft:    resource.Record{"project_id": "p2"},
		Projects: []resource.Record{{"id": "p1", "title": "Garden"}, {"id": "p2", "title": "Library"}},
	}))
	if strings.Contains(out, `name="status"`) {
		t.Error("status field shown to visitors")
	}
	if !strings.Contains(out, `<option value="p2" selected="selected">Library</option>`) {
		t.Errorf("preselected project missing:\n%s", out)
	}
	if !strings.Contains(out, `name="_csrf" value="tok"`) {
		t.Error("csrf field missing")
	}
}

func TestPublicFormSentHidesForm(t *testing.T) {
	p := testPage()
	p.Notices = []folio.Notice{{Kind: folio.NoticeSuccess, Text: "Thanks"}}
	out := renderString(t, Contact(folio.PublicFormPage{Page: p, Schema: resource.Messages, Sent: true}))
	if strings.Contains(out, "<form") {
		t.Error("form rendered after a successful submission")
	}
	if !strings.Contains(out, `class="notice success"`) {
		t.Error("notice missing")
	}
}

func TestAdminFormMediaControls(t *testing.T) {
	p := testPage()
	p.Resources = resource.All()
	out := renderString(t, AdminForm(folio.AdminFormPage{
		Page:   p,
		Schema: resource.Projects,
		Draft: resource.Record{
			"id":         "x1",
			"title":      "Bridge",
			"media_url":  "https://example.com/media/projects/clip.mp4",
			"media_type": "video",
			"status":     "ongoing",
		},
		State: resource.StateEditing,
	}))
	for _, want := range []string{
		`enctype="multipart/form-data"`,
		`<video src="https://example.com/media/projects/clip.mp4"`,
		`name="clear_media"`,
		`accept="image/*,video/*"`,
		`<option value="ongoing" selected="selected">ongoing</option>`,
		`action="/admin/projects/x1/delete/"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Contains(out, `name="media_type"`) {
		t.Error("media kind field should not be editable")
	}
}

func TestAdminListUnreadMessages(t *testing.T) {
	p := testPage()
	p.Resources = resource.All()
	out := renderString(t, AdminList(folio.AdminListPage{
		Page:   p,
		Schema: resource.Messages,
		Items: []resource.Record{
			{"id": "m1", "name": "Ann", "email": "ann@example.com", "read": false},
			{"id": "m2", "name": "Bob", "email": "bob@example.com", "read": true},
		},
		Total: 2,
	}))
	if strings.Count(out, `class="unread"`) != 1 {
		t.Errorf("expected one unread row:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2 of 2") {
		t.Error("count line missing")
	}
}

func TestSingletonHidesNewButton(t *testing.T) {
	p := testPage()
	p.Resources = resource.All()
	out := renderString(t, AdminList(folio.AdminListPage{
		Page:   p,
		Schema: resource.Biography,
		Items:  []resource.Record{{"id": "b1", "title": "Me"}},
		Total:  1,
	}))
	if strings.Contains(out, "/admin/biography/new/") {
		t.Error("new button shown for an existing singleton")
	}
}

func TestExcerpt(t *testing.T) {
	rec := resource.Record{"content": "one  two\nthree four"}
	if got := Excerpt(rec, 7); got != "one two…" {
		t.Errorf("Excerpt = %q", got)
	}
	rec["excerpt"] = "given"
	if got := Excerpt(rec, 7); got != "given" {
		t.Errorf("Excerpt = %q", got)
	}
}

func TestNoticeListEscapesText(t *testing.T) {
	out := renderString(t, noticeList([]folio.Notice{
		{Kind: folio.NoticeFailure, Text: "Could not save <b>event</b>"},
		{Kind: folio.NoticeSuccess, Text: "Saved."},
	}))
	want := `<div class="notice failure" role="status">Could not save &lt;b&gt;event&lt;/b&gt;</div>` +
		`<div class="notice success" role="status">Saved.</div>`
	if out != want {
		t.Errorf("noticeList =\n%s\nwant\n%s", out, want)
	}
}
