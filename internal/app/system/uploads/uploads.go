// Package uploads stores user-supplied images (avatars and editor images)
// on the local filesystem or in an S3-compatible bucket and returns the
// public URL for each stored object.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/google/uuid"
)

// Folders uploads are grouped under.
const (
	KindAvatar = "avatars"
	KindImage  = "questions"
)

// DefaultMaxBytes caps a single upload when no limit is configured.
const DefaultMaxBytes = 5 << 20

var (
	ErrNoFile   = apperr.Invalid("No file uploaded")
	ErrNotImage = apperr.Invalid("Only image files are allowed")
	ErrTooLarge = apperr.Invalid("File is too large")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PutOptions carries object metadata.
type PutOptions struct {
	ContentType string
}

// Store is an object store addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error
	URL(key string) string
}

// Info describes a stored upload.
type Info struct {
	URL         string `json:"url"`
	Key         string `json:"public_id"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Key builds a unique object key: <kind>/YYYY/MM/<uuid8><ext>.
func Key(kind, ext string, now time.Time) string {
	dateDir := fmt.Sprintf("%s/%04d/%02d", kind, now.Year(), now.Month())
	return path.Join(dateDir, uuid.New().String()[:8]+ext)
}

// SaveImage validates that fh is an image no larger than maxBytes and stores
// it under kind.
func SaveImage(ctx context.Context, store Store, kind string, fh *multipart.FileHeader, maxBytes int64) (Info, error) {
	if fh == nil {
		return Info{}, ErrNoFile
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if fh.Size > maxBytes {
		return Info{}, ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return Info{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return Save(ctx, store, kind, fh.Filename, f, maxBytes)
}

// Save sniffs the content type of r, rejects non-images and stores the
// bytes under a fresh key.
func Save(ctx context.Context, store Store, kind, filename string, r io.Reader, maxBytes int64) (Info, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Info{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Info{}, ErrNoFile
	}
	if int64(len(data)) > maxBytes {
		return Info{}, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Info{}, ErrNotImage
	}
	if contentType == "image/jpeg" && strings.EqualFold(filepath.Ext(filename), ".jpeg") {
		ext = ".jpeg"
	}

	key := Key(kind, ext, time.Now().UTC())
	if err := store.Put(ctx, key, bytes.NewReader(data), &PutOptions{ContentType: contentType}); err != nil {
		return Info{}, fmt.Errorf("store upload %s: %w", key, err)
	}
	return Info{
		URL:         store.URL(key),
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// IsUserError reports whether err should be shown to the uploader as-is.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrNotImage) || errors.Is(err, ErrTooLarge)
}
