package folio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eringen/folio/resource"
	"github.com/eringen/folio/resource/resourcetest"
)

func TestContentCacheServesWithinTTL(t *testing.T) {
	log := &resourcetest.CallLog{}
	gw := resourcetest.NewGateway(log)
	gw.Seed(resource.Projects.Table, resource.Record{"id": "p1", "title": "Garden"})

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewContentCache(gw, time.Minute)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		recs, err := cache.List(ctx, resource.Projects)
		if err != nil || len(recs) != 1 {
			t.Fatalf("List = %v, %v", recs, err)
		}
	}
	if n := log.Count("query"); n != 1 {
		t.Fatalf("queries = %d, want 1", n)
	}

	now = now.Add(time.Minute)
	if _, err := cache.List(ctx, resource.Projects); err != nil {
		t.Fatal(err)
	}
	if n := log.Count("query"); n != 2 {
		t.Fatalf("queries after expiry = %d, want 2", n)
	}
}

func TestContentCacheInvalidate(t *testing.T) {
	log := &resourcetest.CallLog{}
	gw := resourcetest.NewGateway(log)
	cache := NewContentCache(gw, time.Hour)
	ctx := context.Background()

	cache.List(ctx, resource.Projects)
	cache.List(ctx, resource.Events)
	cache.Invalidate(resource.Events.Table)
	cache.List(ctx, resource.Projects)
	cache.List(ctx, resource.Events)
	if n := log.Count("query"); n != 3 {
		t.Fatalf("queries = %d, want 3", n)
	}

	cache.Invalidate()
	cache.List(ctx, resource.Projects)
	if n := log.Count("query"); n != 4 {
		t.Fatalf("queries after full invalidate = %d, want 4", n)
	}
}

func TestContentCacheDoesNotStoreFailures(t *testing.T) {
	gw := resourcetest.NewGateway(nil)
	cache := NewContentCache(gw, time.Hour)
	ctx := context.Background()

	gw.Fail("query", errors.New("down"))
	_, err := cache.List(ctx, resource.Events)
	var ge *resource.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want GatewayError", err)
	}

	gw.Fail("query", nil)
	gw.Seed(resource.Events.Table, resource.Record{"id": "e1", "title": "Talk"})
	recs, err := cache.List(ctx, resource.Events)
	if err != nil || len(recs) != 1 {
		t.Fatalf("List after recovery = %v, %v", recs, err)
	}
}

func TestPublishedPostsAndTags(t *testing.T) {
	gw := resourcetest.NewGateway(nil)
	gw.Seed(resource.Blog.Table,
		resource.Record{"id": "1", "title": "A", "status": "published", "tags": []string{"Go", "web"}},
		resource.Record{"id": "2", "title": "B", "status": "draft", "tags": []string{"secret"}},
		resource.Record{"id": "3", "title": "C", "status": "published", "tags": []string{" go "}},
	)
	cache := NewContentCache(gw, time.Hour)

	posts, err := cache.PublishedPosts(context.Background(), "")
	if err != nil || len(posts) != 2 {
		t.Fatalf("PublishedPosts = %v, %v", posts, err)
	}
	tagged, _ := cache.PublishedPosts(context.Background(), "GO")
	if len(tagged) != 2 {
		t.Errorf("tag filter matched %d posts, want 2", len(tagged))
	}

	tags := Tags(posts)
	if len(tags) != 2 || tags[0] != "Go" || tags[1] != "web" {
		t.Errorf("Tags = %v", tags)
	}
}

func TestRelatedPosts(t *testing.T) {
	current := resource.Record{"id": "1", "tags": []string{"Go"}}
	posts := []resource.Record{
		current,
		{"id": "2", "tags": []string{"go", "db"}},
		{"id": "3", "tags": []string{"travel"}},
	}
	related := RelatedPosts(current, posts)
	if len(related) != 1 || related[0].ID() != "2" {
		t.Fatalf("RelatedPosts = %v", related)
	}
}

func TestSplitEvents(t *testing.T) {
	events := []resource.Record{
		{"id": "old", "date": "2020-01-01", "status": "upcoming"},
		{"id": "done", "date": "2030-01-01", "status": "completed"},
		{"id": "next", "date": "2030-02-01", "status": "upcoming"},
		{"id": "older", "date": "2019-01-01", "status": "completed"},
	}
	upcoming, past := splitEvents(events, "2025-01-01")
	if len(upcoming) != 1 || upcoming[0].ID() != "next" {
		t.Errorf("upcoming = %v", upcoming)
	}
	if len(past) != 3 || past[0].ID() != "older" {
		t.Errorf("past = %v", past)
	}
}
