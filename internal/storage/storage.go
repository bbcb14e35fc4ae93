package storage

import (
	"context"
	"io"
)

// BlobStore persists uploaded files and hands back the key and public URL
// the media records carry.
type BlobStore interface {
	Upload(ctx context.Context, key string, size int64, reader io.Reader, contentType string) (string, error)
}
