package blobstore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/resource"
)

func setupTestStore(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(filepath.Join(t.TempDir(), "media"), "/media/", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadAndRemove(t *testing.T) {
	l := setupTestStore(t)
	ctx := context.Background()
	data := pngBytes(t)

	if err := l.Upload(ctx, "portfolio", "look-1.png", data, "image/png"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(l.Dir(), "portfolio", "look-1.png"))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("stored bytes differ from upload")
	}
	if url := l.PublicURL("portfolio", "look-1.png"); url != "/media/portfolio/look-1.png" {
		t.Errorf("PublicURL = %q", url)
	}

	if err := l.Remove(ctx, "portfolio", "look-1.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.Dir(), "portfolio", "look-1.png")); !os.IsNotExist(err) {
		t.Error("blob still on disk")
	}
	if err := l.Remove(ctx, "portfolio", "look-1.png"); err != nil {
		t.Errorf("second Remove = %v, want nil", err)
	}
}

func TestUploadNeverOverwrites(t *testing.T) {
	l := setupTestStore(t)
	ctx := context.Background()
	if err := l.Upload(ctx, "projects", "clip.mp4", []byte("one"), "video/mp4"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	err := l.Upload(ctx, "projects", "clip.mp4", []byte("two"), "video/mp4")
	if !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}
	got, _ := os.ReadFile(filepath.Join(l.Dir(), "projects", "clip.mp4"))
	if string(got) != "one" {
		t.Errorf("blob = %q, want original", got)
	}
}

func TestUploadRejectsCorruptImage(t *testing.T) {
	l := setupTestStore(t)
	err := l.Upload(context.Background(), "blog", "cover.jpg", []byte("not a jpeg"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error for undecodable image")
	}
	entries, _ := os.ReadDir(filepath.Join(l.Dir(), "blog"))
	if len(entries) != 0 {
		t.Errorf("left %d files behind", len(entries))
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	l := setupTestStore(t)
	ctx := context.Background()
	for _, tc := range []struct{ bucket, key string }{
		{"..", "x.png"},
		{"blog", "../../etc/passwd"},
		{"blog", ".hidden"},
		{"Blog", "a.png"},
	} {
		if err := l.Upload(ctx, tc.bucket, tc.key, []byte("x"), "video/mp4"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Upload(%q, %q) = %v, want ErrInvalidKey", tc.bucket, tc.key, err)
		}
	}
}

func TestUploaderDiscardThroughLocal(t *testing.T) {
	l := setupTestStore(t)
	ctx := context.Background()
	up := resource.NewUploader(l, 0, resource.WithStampFunc(func() int64 { return 42 }))

	url, kind, err := up.Upload(ctx, *resource.Portfolio.Media, &resource.File{Name: "Look Book.PNG", Data: pngBytes(t)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/media/portfolio/look-book-42.png" || kind != resource.MediaImage {
		t.Errorf("url, kind = %q, %q", url, kind)
	}
	if err := up.Discard(ctx, "portfolio", url); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.Dir(), "portfolio", "look-book-42.png")); !os.IsNotExist(err) {
		t.Error("blob not removed")
	}
}
