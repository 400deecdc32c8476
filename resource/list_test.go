package resource_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/eringen/folio/resource"
)

func seedPortfolio(h *harness) {
	h.gw.Seed("portfolio",
		resource.Record{"id": "1", "created_at": "2024-01-01T00:00:00Z", "title": "Nairobi Show", "category": "Runway", "image_url": "https://cdn/portfolio/nairobi-1.jpg"},
		resource.Record{"id": "2", "created_at": "2024-02-01T00:00:00Z", "title": "Vogue Cover", "category": "Editorial", "image_url": "https://cdn/portfolio/vogue-2.jpg"},
		resource.Record{"id": "3", "created_at": "2024-03-01T00:00:00Z", "title": "Lagos Runway", "category": "Runway", "description": "Closing look", "image_url": "https://cdn/portfolio/lagos-3.jpg"},
	)
}

func ids(recs []resource.Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.ID())
	}
	return out
}

func TestLoadOrdersBySchema(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	if err := list.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ids(list.Items()); !slices.Equal(got, []string{"3", "2", "1"}) {
		t.Errorf("order = %v, want newest first", got)
	}
	if got := list.Categories(); !slices.Equal(got, []string{"Editorial", "Runway"}) {
		t.Errorf("categories = %v", got)
	}
}

func TestLoadFailureKeepsPreviousList(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	if err := list.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.gw.Fail("query", errors.New("timeout"))
	err := list.Load(context.Background())
	var ge *resource.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if n := len(list.All()); n != 3 {
		t.Errorf("kept %d records, want 3", n)
	}
	if len(h.notes.Failures()) != 1 {
		t.Errorf("failures = %v, want one", h.notes.Failures())
	}
}

func TestFilterCombinations(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	h.log.Reset()

	tests := []struct {
		name   string
		filter *resource.Filter
		want   []string
	}{
		{"text title", &resource.Filter{Text: "RUNWAY"}, []string{"3", "1"}},
		{"text description", &resource.Filter{Text: "closing"}, []string{"3"}},
		{"category", &resource.Filter{Category: "Editorial"}, []string{"2"}},
		{"text and category", &resource.Filter{Text: "lagos", Category: "Runway"}, []string{"3"}},
		{"text and other category", &resource.Filter{Text: "lagos", Category: "Editorial"}, nil},
		{"cleared", nil, []string{"3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list.SetFilter(tt.filter)
			if got := ids(list.Items()); !slices.Equal(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
	if n := len(h.log.Calls()); n != 0 {
		t.Errorf("filtering made %d gateway calls", n)
	}
}

func TestFilterRestoresLoadedList(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	loaded := list.Items()

	list.SetFilter(&resource.Filter{Category: "Runway"})
	list.SetFilter(&resource.Filter{Text: "vogue"})
	list.SetFilter(nil)

	got := list.Items()
	if len(got) != len(loaded) {
		t.Fatalf("len = %d, want %d", len(got), len(loaded))
	}
	for i := range got {
		if !got[i].Equal(loaded[i]) {
			t.Errorf("item %d = %v, want %v", i, got[i], loaded[i])
		}
	}
}

func TestStatusFilter(t *testing.T) {
	h := newHarness(t)
	h.gw.Seed("volunteers",
		resource.Record{"id": "a", "name": "Ana", "status": "pending", "skills": []string{"Photography"}},
		resource.Record{"id": "b", "name": "Ben", "status": "approved", "skills": []string{"Logistics"}},
	)
	list := h.list(resource.Volunteers)
	_ = list.Load(context.Background())
	list.SetFilter(&resource.Filter{Status: "approved"})
	if got := ids(list.Items()); !slices.Equal(got, []string{"b"}) {
		t.Errorf("ids = %v", got)
	}
	list.SetFilter(&resource.Filter{Text: "photo"})
	if got := ids(list.Items()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("skills search ids = %v", got)
	}
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	h.log.Reset()

	for _, id := range []string{"", "99", "abc"} {
		if err := list.Remove(context.Background(), id, resource.Confirmed); err != nil {
			t.Errorf("Remove(%q) = %v", id, err)
		}
	}
	if n := len(h.log.Calls()); n != 0 {
		t.Errorf("calls = %v, want none", h.log.Ops())
	}
}

func TestRemoveDeclinedIsNoop(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	h.log.Reset()

	asked := ""
	no := resource.ConfirmFunc(func(prompt string) bool { asked = prompt; return false })
	if err := list.Remove(context.Background(), "1", no); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if asked == "" {
		t.Error("confirmation was not requested")
	}
	if len(h.log.Calls()) != 0 || len(list.All()) != 3 {
		t.Errorf("declined remove changed state: calls %v", h.log.Ops())
	}
}

func TestRemoveDeletesRecordAndMedia(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	list.SetFilter(&resource.Filter{Category: "Runway"})
	h.log.Reset()

	if err := list.Remove(context.Background(), "1", resource.Confirmed); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := h.log.Ops(); !slices.Equal(got, []string{"delete", "remove"}) {
		t.Errorf("ops = %v, want delete then remove", got)
	}
	calls := h.log.Calls()
	if calls[1].Target != "portfolio" || calls[1].ID != "nairobi-1.jpg" {
		t.Errorf("blob removal = %+v", calls[1])
	}
	if got := ids(list.Items()); !slices.Equal(got, []string{"3"}) {
		t.Errorf("filtered view = %v", got)
	}
	if _, ok := list.Get("1"); ok {
		t.Error("record still in list")
	}
	if len(h.notes.Successes()) != 1 {
		t.Errorf("successes = %v", h.notes.Successes())
	}
}

func TestRemoveFailureLeavesList(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	h.gw.Fail("delete", errors.New("permission denied"))

	err := list.Remove(context.Background(), "2", resource.Confirmed)
	var ge *resource.GatewayError
	if !errors.As(err, &ge) || ge.Op != "delete" {
		t.Fatalf("err = %v, want delete GatewayError", err)
	}
	if len(list.All()) != 3 {
		t.Error("list changed after failed delete")
	}
	if h.log.Count("remove") != 0 {
		t.Error("blob removed after failed delete")
	}
	if len(h.notes.Failures()) != 1 {
		t.Errorf("failures = %v", h.notes.Failures())
	}
}

func TestPatchMarksMessageRead(t *testing.T) {
	h := newHarness(t)
	h.gw.Seed("messages", resource.Record{"id": "m1", "name": "Ana", "email": "ana@example.com", "message": "Hi", "read": false})
	list := h.list(resource.Messages)
	_ = list.Load(context.Background())

	if err := list.Patch(context.Background(), "m1", resource.Record{"read": true}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	rec, _ := list.Get("m1")
	if !rec.Bool("read") {
		t.Error("in-memory record not marked read")
	}
	if !h.gw.Rows("messages")[0].Bool("read") {
		t.Error("stored record not marked read")
	}
}

func TestPatchRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	h.gw.Seed("volunteers", resource.Record{"id": "v1", "name": "Ana", "status": "pending"})
	list := h.list(resource.Volunteers)
	_ = list.Load(context.Background())
	h.log.Reset()

	if err := list.Patch(context.Background(), "v1", resource.Record{"status": "maybe"}); !resource.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if h.log.Count("update") != 0 {
		t.Error("update sent for an unknown status")
	}
}

func TestPatchValidatesMergedRecord(t *testing.T) {
	h := newHarness(t)
	h.gw.Seed("projects", resource.Record{"id": "p1", "title": "Garden", "description": "Beds", "status": "ongoing"})
	h.gw.Seed("volunteers", resource.Record{"id": "v1", "name": "Ana", "email": "ana@example.com", "status": "pending"})
	list := h.list(resource.Volunteers)
	_ = list.Load(context.Background())
	h.log.Reset()

	tests := []struct {
		name    string
		changes resource.Record
	}{
		{"blank required field", resource.Record{"name": ""}},
		{"malformed email", resource.Record{"email": "not-an-email"}},
		{"missing project", resource.Record{"project_id": "no-such-project"}},
		{"managed field", resource.Record{"created_at": "2020-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := list.Patch(context.Background(), "v1", tt.changes); !resource.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
	if h.log.Count("update") != 0 {
		t.Fatalf("invalid patch reached the gateway: %v", h.log.Ops())
	}
	stored := h.gw.Rows("volunteers")[0]
	if stored.String("name") != "Ana" || stored.String("email") != "ana@example.com" || stored.String("project_id") != "" {
		t.Errorf("stored record changed: %v", stored)
	}

	if err := list.Patch(context.Background(), "v1", resource.Record{"project_id": "p1"}); err != nil {
		t.Fatalf("Patch with an existing project: %v", err)
	}
	if got := h.gw.Rows("volunteers")[0].String("project_id"); got != "p1" {
		t.Errorf("project_id = %q", got)
	}
}

func TestPatchCannotReplaceMedia(t *testing.T) {
	h := newHarness(t)
	seedPortfolio(h)
	list := h.list(resource.Portfolio)
	_ = list.Load(context.Background())
	h.log.Reset()

	err := list.Patch(context.Background(), "1", resource.Record{"image_url": "https://elsewhere/x.jpg"})
	if !resource.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if h.log.Count("update") != 0 {
		t.Error("media patch reached the gateway")
	}
}
