package resource_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringen/folio/resource"
	"github.com/eringen/folio/resource/resourcetest"
)

func TestUploaderKeysNeverRepeat(t *testing.T) {
	up := resource.NewUploader(resourcetest.NewBlobs(nil, "https://cdn"), 0, resource.WithStampFunc(func() int64 { return 5 }))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		key := up.Key("Show Night.JPG", "image/jpeg")
		if seen[key] {
			t.Fatalf("key %q reused", key)
		}
		seen[key] = true
		if !strings.HasPrefix(key, "show-night-") || !strings.HasSuffix(key, ".jpg") {
			t.Errorf("key = %q", key)
		}
	}
}

func TestUploaderKeyExtensionFollowsContentType(t *testing.T) {
	up := resource.NewUploader(resourcetest.NewBlobs(nil, "https://cdn"), 0, resource.WithStampFunc(func() int64 { return 1 }))
	tests := []struct {
		name, contentType, ext string
	}{
		{"cover.jpeg", "image/jpeg", ".jpeg"},
		{"clip.html", "video/mp4", ".mp4"},
		{"photo.jpég", "image/png", ".png"},
		{"noext", "image/webp", ".webp"},
		{"still.PNG", "image/png; charset=binary", ".png"},
		{"odd.bin", "not a type", ""},
	}
	for _, tt := range tests {
		key := up.Key(tt.name, tt.contentType)
		if got := filepath.Ext(key); got != tt.ext {
			t.Errorf("Key(%q, %q) = %q, want extension %q", tt.name, tt.contentType, key, tt.ext)
		}
	}
}

func TestUploadStoresVideoUnderVideoExtension(t *testing.T) {
	blobs := resourcetest.NewBlobs(nil, "https://cdn")
	up := resource.NewUploader(blobs, 0, resource.WithStampFunc(func() int64 { return 3 }))
	file := &resource.File{Name: "x.html", ContentType: "video/mp4", Data: []byte("\x00\x00\x00\x18ftypmp42")}
	url, kind, err := up.Upload(context.Background(), *resource.Projects.Media, file)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if kind != resource.MediaVideo || url != "https://cdn/projects/x-3.mp4" {
		t.Errorf("url = %q, kind = %q", url, kind)
	}
}

func TestUploaderRejectsOversize(t *testing.T) {
	log := &resourcetest.CallLog{}
	up := resource.NewUploader(resourcetest.NewBlobs(log, "https://cdn"), 4)
	_, _, err := up.Upload(context.Background(), *resource.Portfolio.Media, jpeg("big.jpg"))
	var ue *resource.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UploadError", err)
	}
	if log.Count("upload") != 0 {
		t.Error("oversize file reached the blob store")
	}
}

func TestUploaderReturnsPublicURL(t *testing.T) {
	blobs := resourcetest.NewBlobs(nil, "https://cdn/")
	up := resource.NewUploader(blobs, 0, resource.WithStampFunc(func() int64 { return 9 }))
	url, kind, err := up.Upload(context.Background(), *resource.Blog.Media, jpeg("cover.jpeg"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn/blog/cover-9.jpeg" {
		t.Errorf("url = %q", url)
	}
	if kind != resource.MediaImage {
		t.Errorf("kind = %q", kind)
	}
	if !blobs.Has("blog", "cover-9.jpeg") {
		t.Error("blob not stored")
	}

	if err := up.Discard(context.Background(), "blog", url); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if blobs.Has("blog", "cover-9.jpeg") {
		t.Error("blob not removed")
	}
}

func TestDiscardIgnoresForeignURLs(t *testing.T) {
	log := &resourcetest.CallLog{}
	up := resource.NewUploader(resourcetest.NewBlobs(log, "https://cdn"), 0)
	for _, u := range []string{"https://elsewhere/blog/a.jpg", "https://cdn/portfolio/a.jpg", "https://cdn/blog/"} {
		if err := up.Discard(context.Background(), "blog", u); err != nil {
			t.Errorf("Discard(%q) = %v", u, err)
		}
	}
	if log.Count("remove") != 0 {
		t.Errorf("removed foreign blobs: %v", log.Ops())
	}
}

func TestFileKind(t *testing.T) {
	tests := []struct {
		file resource.File
		kind resource.MediaKind
		ok   bool
	}{
		{resource.File{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\n")}, resource.MediaImage, true},
		{resource.File{Name: "a", ContentType: "video/webm", Data: []byte("x")}, resource.MediaVideo, true},
		{resource.File{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")}, "", false},
	}
	for _, tt := range tests {
		kind, ok := tt.file.Kind()
		if kind != tt.kind || ok != tt.ok {
			t.Errorf("%s: Kind() = %q, %v; want %q, %v", tt.file.Name, kind, ok, tt.kind, tt.ok)
		}
	}
}
