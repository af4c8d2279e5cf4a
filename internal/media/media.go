// Package media stores uploaded images and videos.
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/anonto42/aray/backend/internal/models"
)

// ErrNotFound is returned when no stored file matches an id
var ErrNotFound = errors.New("media not found")

var allowedExtensions = map[string][]string{
	models.MediaTypeImage: {"png", "jpg", "jpeg", "gif"},
	models.MediaTypeVideo: {"mp4", "mov", "avi"},
}

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
}

// Object is an opened stored file. Callers must close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// Store persists uploads
type Store interface {
	Save(ctx context.Context, ownerID uint, filename, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (*Object, error)
}

// ContentTypeFor checks filename against the allowlist of mediaType and returns its content type
func ContentTypeFor(mediaType, filename string) (string, error) {
	exts, ok := allowedExtensions[mediaType]
	if !ok {
		return "", models.NewValidationError("unsupported media type")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range exts {
		if ext == allowed {
			return contentTypes[ext], nil
		}
	}
	return "", models.NewValidationError("invalid file type, allowed: " + strings.Join(exts, ", "))
}
