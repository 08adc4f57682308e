// Package storage provides the object-storage client for product
// images. The S3 implementation works with any S3-compatible provider;
// swap implementations by changing the concrete type injected at
// startup.
package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"
)

// Bucket is the fixed bucket holding all product images.
const Bucket = "product-images"

// ObjectStorage is the interface for uploading and removing product
// image objects.
type ObjectStorage interface {
	// Upload streams data to the store under the given key. When
	// overwrite is false an existing object under the same key causes
	// the upload to fail rather than being silently replaced.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, overwrite bool) error

	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error

	// PublicURL resolves the browser-accessible URL for a key.
	PublicURL(key string) (string, error)
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// ObjectKey builds a unique storage key for an uploaded file: the
// current time in nanoseconds joined to the original filename with
// whitespace runs collapsed to single hyphens.
func ObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), whitespaceRuns.ReplaceAllString(filename, "-"))
}
