package model

import (
	"context"
	"io"
)

// Storage is the asset store capability. Implementations return the
// retrievable URL of the stored object; failures are wrapped into
// StorageError by the caller.
type Storage interface {
	Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
