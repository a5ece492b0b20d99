package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrInvalidObjectKey = errors.New("invalid object key")

// PutObjectInput describes one object to write. Metadata is stored as
// user metadata next to the body.
type PutObjectInput struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Body        io.Reader
}

type StoredObject struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	ETag     string `json:"etag,omitempty"`
}

// ObjectStore is the write side of a bucket.
type ObjectStore interface {
	Put(ctx context.Context, in PutObjectInput) (*StoredObject, error)
	PublicURL(key string) string
}

// validateKey rejects keys that would escape the archive prefix.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidObjectKey
	}
	return nil
}
