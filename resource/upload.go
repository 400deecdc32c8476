package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultMaxUploadSize caps staged files when the Uploader is built with a
// zero limit.
const DefaultMaxUploadSize = 10 << 20

var (
	errEmptyFile   = errors.New("file is empty")
	errTooLarge    = errors.New("file too large")
	errUnsupported = errors.New("unsupported media type")
)

// File is a local file staged for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// DetectedType returns the declared content type, falling back to the
// extension and then to content sniffing.
func (f *File) DetectedType() string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); ct != "" {
		return ct
	}
	return http.DetectContentType(f.Data)
}

// Kind classifies the file as image or video; ok is false otherwise.
func (f *File) Kind() (MediaKind, bool) {
	ct := f.DetectedType()
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, true
	}
	return "", false
}

// Preview returns a data: URI the operator can display before upload.
func (f *File) Preview() string {
	return "data:" + f.DetectedType() + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// Uploader stores staged files in the blob store and returns their public
// URL. It never transforms the file.
type Uploader struct {
	blobs   BlobStore
	maxSize int64
	stamp   func() int64

	mu   sync.Mutex
	last int64
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithStampFunc replaces the nanosecond clock used to build storage keys.
func WithStampFunc(fn func() int64) UploaderOption {
	return func(u *Uploader) { u.stamp = fn }
}

// NewUploader creates an Uploader over blobs. A maxSize of zero means
// DefaultMaxUploadSize.
func NewUploader(blobs BlobStore, maxSize int64, opts ...UploaderOption) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	u := &Uploader{
		blobs:   blobs,
		maxSize: maxSize,
		stamp:   func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload validates f against spec, stores it under a fresh key and returns
// its public URL and kind.
func (u *Uploader) Upload(ctx context.Context, spec MediaSpec, f *File) (string, MediaKind, error) {
	fail := func(err error) (string, MediaKind, error) {
		name := ""
		if f != nil {
			name = f.Name
		}
		return "", "", &UploadError{Bucket: spec.Bucket, Name: name, Err: err}
	}
	if f == nil || len(f.Data) == 0 {
		return fail(errEmptyFile)
	}
	if int64(len(f.Data)) > u.maxSize {
		return fail(fmt.Errorf("%w: %d bytes exceeds %d", errTooLarge, len(f.Data), u.maxSize))
	}
	kind, ok := f.Kind()
	if !ok || !spec.Allows(kind) {
		return fail(fmt.Errorf("%w: %s", errUnsupported, f.DetectedType()))
	}
	key := u.Key(f.Name, f.DetectedType())
	if err := u.blobs.Upload(ctx, spec.Bucket, key, f.Data, f.DetectedType()); err != nil {
		return fail(err)
	}
	return u.blobs.PublicURL(spec.Bucket, key), kind, nil
}

// mediaExts are the extensions stored for common media types.
var mediaExts = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/bmp":       ".bmp",
	"image/tiff":      ".tiff",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/ogg":       ".ogv",
	"video/quicktime": ".mov",
}

var extRe = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// extFor picks the stored extension. The file name's extension is kept only
// when it names the detected content type.
func extFor(name, contentType string) string {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(name))
	if extRe.MatchString(ext) {
		if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && byExt == ct {
			return ext
		}
	}
	if ext, ok := mediaExts[ct]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 && extRe.MatchString(exts[0]) {
		return exts[0]
	}
	return ""
}

// Key builds a storage key from the original file name and a strictly
// increasing stamp, so no two calls on one Uploader return the same key.
// The extension follows contentType, not the client's file name.
func (u *Uploader) Key(name, contentType string) string {
	ext := extFor(name, contentType)
	base := Slugify(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "media"
	}
	u.mu.Lock()
	n := u.stamp()
	if n <= u.last {
		n = u.last + 1
	}
	u.last = n
	u.mu.Unlock()
	return fmt.Sprintf("%s-%d%s", base, n, ext)
}

// Discard removes the blob behind a public URL produced by this store.
// URLs that do not belong to bucket are ignored.
func (u *Uploader) Discard(ctx context.Context, bucket, url string) error {
	prefix := u.blobs.PublicURL(bucket, "")
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" || strings.Contains(key, "/") {
		return nil
	}
	return u.blobs.Remove(ctx, bucket, key)
}

// Slugify converts s to a lowercase, hyphen separated token.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
