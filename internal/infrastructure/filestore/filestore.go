// Package filestore persists uploaded images and resolves their public URLs.
package filestore

import (
	"context"
	"io"
)

// Store saves and removes uploaded files by generated name.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	Remove(ctx context.Context, name string) error
	// URL returns the public address of name. baseURL is scheme://host of
	// the current request and is ignored by stores with absolute URLs.
	URL(baseURL, name string) string
}
