package folio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/folio/resource"
)

// ContentCache is an in-memory cache of resource lists for the public pages,
// one entry per table, each with its own TTL.
type ContentCache struct {
	gw  resource.Gateway
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	recs    []resource.Record
	fetched time.Time
}

// NewContentCache creates a ContentCache backed by the given gateway.
func NewContentCache(gw resource.Gateway, ttl time.Duration) *ContentCache {
	return &ContentCache{
		gw:      gw,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func (c *ContentCache) fresh(table string) ([]resource.Record, bool) {
	e, ok := c.entries[table]
	if !ok || c.now().Sub(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.recs, true
}

// List returns every record of schema in schema order. The returned slice
// is shared; callers must not modify it.
func (c *ContentCache) List(ctx context.Context, schema resource.Schema) ([]resource.Record, error) {
	c.mu.RLock()
	recs, ok := c.fresh(schema.Table)
	c.mu.RUnlock()
	if ok {
		return recs, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if recs, ok := c.fresh(schema.Table); ok {
		return recs, nil
	}
	recs, err := c.gw.Query(ctx, schema.Table, resource.Query{Order: schema.Order})
	if err != nil {
		return nil, &resource.GatewayError{Op: "query", Table: schema.Table, Err: err}
	}
	if recs == nil {
		recs = []resource.Record{}
	}
	c.entries[schema.Table] = cacheEntry{recs: recs, fetched: c.now()}
	return recs, nil
}

// Invalidate drops the given tables, or everything when none are given.
func (c *ContentCache) Invalidate(tables ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(tables) == 0 {
		c.entries = map[string]cacheEntry{}
		return
	}
	for _, t := range tables {
		delete(c.entries, t)
	}
}

// PublishedPosts returns the published blog posts, optionally filtered by tag.
func (c *ContentCache) PublishedPosts(ctx context.Context, tag string) ([]resource.Record, error) {
	recs, err := c.List(ctx, resource.Blog)
	if err != nil {
		return nil, err
	}
	want := normalizeTag(tag)
	var posts []resource.Record
	for _, r := range recs {
		if r.String(resource.Blog.StatusField) != "published" {
			continue
		}
		if want != "" && !hasTag(r, want) {
			continue
		}
		posts = append(posts, r)
	}
	return posts, nil
}

// Tags returns the distinct tags of posts in display form, sorted.
func Tags(posts []resource.Record) []string {
	seen := map[string]string{}
	for _, p := range posts {
		for _, t := range p.Strings("tags") {
			if n := normalizeTag(t); n != "" {
				if _, ok := seen[n]; !ok {
					seen[n] = strings.TrimSpace(t)
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return normalizeTag(out[i]) < normalizeTag(out[j]) })
	return out
}

func hasTag(post resource.Record, normalized string) bool {
	for _, t := range post.Strings("tags") {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
