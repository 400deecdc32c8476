package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/folio/resource"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// RelatedPosts returns the posts sharing at least one tag with current.
func RelatedPosts(current resource.Record, posts []resource.Record) []resource.Record {
	tags := make(map[string]struct{})
	for _, t := range current.Strings("tags") {
		if n := normalizeTag(t); n != "" {
			tags[n] = struct{}{}
		}
	}
	var related []resource.Record
	for _, p := range posts {
		if p.ID() == current.ID() {
			continue
		}
		for _, t := range p.Strings("tags") {
			if _, ok := tags[normalizeTag(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// JoinSet formats a set field for a text input.
func JoinSet(items []string) string {
	return strings.Join(items, ", ")
}

// RecordTime parses a gateway timestamp such as created_at.
func RecordTime(rec resource.Record, field string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, rec.String(field))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PersonJsonLD returns a Schema.org Person JSON-LD block for the site owner.
func PersonJsonLD(site Site, bio resource.Record) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     site.Author,
		"url":      BuildURL(site.URL),
	}
	if site.Author == "" {
		data["name"] = site.Name
	}
	if bio != nil && bio.String("title") != "" {
		data["jobTitle"] = bio.String("title")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a Schema.org BlogPosting JSON-LD block.
func BlogPostingJsonLD(site Site, post resource.Record) string {
	postURL := BuildURL(site.URL, "blog", post.ID())
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.String("title"),
		"description": post.String("excerpt"),
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if t, ok := RecordTime(post, resource.FieldCreatedAt); ok {
		data["datePublished"] = t.Format("2006-01-02")
	}
	if img := post.String("image_url"); img != "" {
		data["image"] = img
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	if tags := post.Strings("tags"); len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
