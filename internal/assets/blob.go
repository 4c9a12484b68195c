package assets

import (
	"context"
	"io"
)

// BlobStore is the object storage the services upload media to. It is
// satisfied by *storage.Client and *local.Store.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
	Remove(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}
