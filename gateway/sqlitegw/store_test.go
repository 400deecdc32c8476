package sqlitegw

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/resource"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "folio.db")

	s, err := Open(path, resource.All()...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}
	return s, cleanup
}

func TestOpenCreatesTables(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for _, schema := range resource.All() {
		n, err := s.Count(context.Background(), schema.Table)
		if err != nil {
			t.Errorf("Count(%s): %v", schema.Table, err)
		}
		if n != 0 {
			t.Errorf("Count(%s) = %d, want 0", schema.Table, n)
		}
	}
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	saved, err := s.Insert(context.Background(), "milestones", resource.Record{
		"id":    "client-chosen",
		"year":  int64(2019),
		"title": "First cover",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if saved.ID() == "" || saved.ID() == "client-chosen" {
		t.Errorf("id = %q, want a gateway-assigned id", saved.ID())
	}
	if saved.String(resource.FieldCreatedAt) == "" {
		t.Error("created_at not set")
	}

	recs, err := s.Query(context.Background(), "milestones", resource.Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(recs) != 1 || !recs[0].Equal(saved) {
		t.Errorf("Query = %v, want [%v]", recs, saved)
	}
	if _, ok := recs[0]["year"].(int64); !ok {
		t.Errorf("year type = %T, want int64", recs[0]["year"])
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	saved, err := s.Insert(ctx, "blog_posts", resource.Record{
		"title":  "Draft",
		"tags":   []string{"runway"},
		"status": "draft",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Update(ctx, "blog_posts", saved.ID(), resource.Record{"status": "published", "image_url": nil}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	recs, _ := s.Query(ctx, "blog_posts", resource.Query{})
	got := recs[0]
	if got.String("title") != "Draft" || got.String("status") != "published" {
		t.Errorf("merged record = %v", got)
	}
	if !slices.Equal(got.Strings("tags"), []string{"runway"}) {
		t.Errorf("tags = %v", got.Strings("tags"))
	}
	if got.String(resource.FieldCreatedAt) != saved.String(resource.FieldCreatedAt) {
		t.Error("created_at changed on update")
	}
	if got.String(resource.FieldUpdatedAt) == "" {
		t.Error("updated_at not stamped")
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Update(ctx, "events", "nope", resource.Record{"title": "x"}); err != resource.ErrNotFound {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "events", "nope"); err != resource.ErrNotFound {
		t.Errorf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestQueryWhereAndOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, m := range []resource.Record{
		{"year": int64(2017), "title": "Debut", "featured": true},
		{"year": int64(2022), "title": "Campaign", "featured": false},
		{"year": int64(2019), "title": "Cover", "featured": true},
	} {
		if _, err := s.Insert(ctx, "milestones", m); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recs, err := s.Query(ctx, "milestones", resource.Query{Order: resource.Order{Field: "year", Desc: true}})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	var titles []string
	for _, r := range recs {
		titles = append(titles, r.String("title"))
	}
	if want := []string{"Campaign", "Cover", "Debut"}; !slices.Equal(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}

	recs, err = s.Query(ctx, "milestones", resource.Query{Where: map[string]any{"featured": true, "year": 2019}})
	if err != nil {
		t.Fatalf("Query where failed: %v", err)
	}
	if len(recs) != 1 || recs[0].String("title") != "Cover" {
		t.Errorf("where result = %v", recs)
	}
}

func TestQueryRejectsBadIdentifiers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := s.Query(ctx, "posts; DROP TABLE events", resource.Query{}); err == nil {
		t.Error("expected error for invalid table name")
	}
	if _, err := s.Query(ctx, "events", resource.Query{Where: map[string]any{"title') OR 1=1 --": "x"}}); err == nil {
		t.Error("expected error for invalid field name")
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	saved, _ := s.Insert(ctx, "messages", resource.Record{"name": "Ana", "read": false})
	if err := s.Delete(ctx, "messages", saved.ID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n, _ := s.Count(ctx, "messages"); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestControllersRoundTripThroughSQLite(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	form := resource.NewFormController(resource.Events, s, nil, nil, zerolog.Nop())
	_ = form.New()
	fields := map[string]any{
		"title":    "Charity Gala",
		"date":     "2024-11-02",
		"time":     "19:30",
		"location": "Nairobi",
		"capacity": "250",
		"status":   "upcoming",
	}
	for k, v := range fields {
		if err := form.SetField(k, v); err != nil {
			t.Fatalf("SetField(%s): %v", k, err)
		}
	}
	draft := form.Draft()
	if _, err := form.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	list := resource.NewListController(resource.Events, s, nil, nil, zerolog.Nop())
	if err := list.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := list.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	got := items[0].Without(resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt)
	if !got.Equal(draft) {
		t.Errorf("loaded = %#v, want %#v", got, draft)
	}
}
