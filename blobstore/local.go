// Package blobstore keeps uploaded media on the local filesystem and serves
// it under a public base URL. It implements resource.BlobStore.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrExists is returned when a key is already taken in its bucket.
	ErrExists = errors.New("blob already exists")

	// ErrInvalidKey is returned for bucket or key names that could escape
	// the storage root.
	ErrInvalidKey = errors.New("invalid bucket or key")
)

var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Local stores blobs as files under dir/<bucket>/<key>.
type Local struct {
	dir     string
	baseURL string
	log     zerolog.Logger
}

// NewLocal creates the storage root if needed. baseURL is the public prefix
// the files are served under, e.g. "/media" or "https://cdn.example.com".
func NewLocal(dir, baseURL string, log zerolog.Logger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", dir, err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "blobstore").Logger(),
	}, nil
}

// Dir returns the storage root.
func (l *Local) Dir() string { return l.dir }

func (l *Local) path(bucket, key string) (string, error) {
	if !nameRe.MatchString(bucket) || !nameRe.MatchString(key) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}
	return filepath.Join(l.dir, bucket, key), nil
}

// Upload writes data under bucket/key. Existing keys are never overwritten.
// Image content types are checked by decoding the image header.
func (l *Local) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if strings.HasPrefix(contentType, "image/") && contentType != "image/svg+xml" {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("invalid image: %w", err)
		}
		l.log.Debug().Str("format", format).Int("width", cfg.Width).Int("height", cfg.Height).Msg("image accepted")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	// Write to a temp file first so a reader never sees a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s/%s", ErrExists, bucket, key)
		}
		return fmt.Errorf("store blob: %w", err)
	}
	l.log.Info().Str("bucket", bucket).Str("key", key).Int("size", len(data)).Msg("blob stored")
	return nil
}

// PublicURL returns the URL a stored blob is served under. With an empty
// key it returns the bucket prefix.
func (l *Local) PublicURL(bucket, key string) string {
	return l.baseURL + "/" + bucket + "/" + key
}

// Remove deletes bucket/key. Missing blobs are not an error.
func (l *Local) Remove(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.log.Warn().Str("bucket", bucket).Str("key", key).Msg("blob to remove does not exist")
			return nil
		}
		return fmt.Errorf("remove blob: %w", err)
	}
	l.log.Info().Str("bucket", bucket).Str("key", key).Msg("blob removed")
	return nil
}
