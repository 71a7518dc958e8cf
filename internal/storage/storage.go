// Package storage keeps uploaded file bytes in an object store.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Download when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is a downloaded object. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64 // -1 when unknown
}

// ObjectStore uploads, serves and removes objects by key.
type ObjectStore interface {
	// Upload stores body under key and returns the object's location.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// PresignURL returns a time-limited GET URL for key.
	PresignURL(ctx context.Context, key string, expires time.Duration) (string, error)
	Download(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

func joinKey(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
