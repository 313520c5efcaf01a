package data

import (
	"context"
	"io"

	"github.com/relocity/relocation-backend/internal/pkg/minio"
	"github.com/relocity/relocation-backend/internal/relocation/sweeper"
)

// ObjectStorage adapts the minio client to the blob store's interface.
type ObjectStorage struct {
	client *minio.Client
}

// NewObjectStorage creates an object storage adapter.
func NewObjectStorage(client *minio.Client) *ObjectStorage {
	return &ObjectStorage{client: client}
}

func (s *ObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

func (s *ObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, key)
}

func (s *ObjectStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, key)
}

// List enumerates stored objects under the given prefix for the sweeper.
func (s *ObjectStorage) List(ctx context.Context, prefix string) ([]sweeper.StoredObject, error) {
	entries, err := s.client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	objects := make([]sweeper.StoredObject, len(entries))
	for i, e := range entries {
		objects[i] = sweeper.StoredObject{
			Key:          e.Key,
			LastModified: e.LastModified,
		}
	}
	return objects, nil
}
