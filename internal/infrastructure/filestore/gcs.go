package filestore

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/user-records/pkg/helpers"
)

const gcsPrefix = "uploads"

// GCS stores files as public objects under uploads/ in a bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (g *GCS) Save(ctx context.Context, name, contentType string, r io.Reader) error {
	_, err := helpers.UploadObject(ctx, g.client, g.bucket, path.Join(gcsPrefix, name), contentType, r)
	return err
}

func (g *GCS) Remove(ctx context.Context, name string) error {
	return helpers.DeleteObject(ctx, g.client, g.bucket, path.Join(gcsPrefix, name))
}

func (g *GCS) URL(_ string, name string) string {
	return helpers.PublicURL(g.bucket, path.Join(gcsPrefix, name))
}
