/**
 * @description
 * This package abstracts the blob storage backend used for account images.
 * The service stores an opaque path reference on the account row; the Store
 * implementation decides where the bytes actually live.
 */
package blobstore

import (
	"context"
	"io"
)

// Store is the blob storage collaborator. Save persists the content under the
// given relative path and returns the reference to persist on the account.
// Delete failures are surfaced so callers can log them, but callers must not
// fail their own operation because of one.
type Store interface {
	Save(ctx context.Context, path string, content io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}
