package adapters

import (
	"context"

	"geotagger/internal/feature/games/usecase"
	"geotagger/internal/platform/supabase"
)

// storageSupabase stores images in a Supabase Storage bucket.
type storageSupabase struct {
	client *supabase.Client
	bucket string
}

var _ usecase.ObjectStorage = (*storageSupabase)(nil)

// NewStorageSupabase creates an ObjectStorage backed by bucket.
func NewStorageSupabase(client *supabase.Client, bucket string) *storageSupabase {
	return &storageSupabase{client: client, bucket: bucket}
}

// Upload stores data at path without upsert.
func (s *storageSupabase) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	return s.client.Upload(ctx, s.bucket, path, data, contentType, false)
}

// PublicURL resolves the public URL of path.
func (s *storageSupabase) PublicURL(path string) string {
	return s.client.PublicURL(s.bucket, path)
}
