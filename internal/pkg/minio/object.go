package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PutObjectOptions represents options for uploading an object
type PutObjectOptions struct {
	// ContentType is the content type of the object
	ContentType string
	// UserMetadata is custom metadata for the object
	UserMetadata map[string]string
}

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
}

// PutObject uploads an object to the configured bucket
func (c *Client) PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, opts PutObjectOptions) (UploadInfo, error) {
	if objectName == "" {
		return UploadInfo{}, WrapError("PutObject", ErrInvalidObjectName, c.config.Bucket, objectName)
	}

	info, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.UserMetadata,
	})
	if err != nil {
		return UploadInfo{}, WrapError("PutObject", err, c.config.Bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Debug("object uploaded",
			zap.String("bucket", c.config.Bucket),
			zap.String("object", objectName),
			zap.Int64("size", info.Size),
		)
	}

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
	}, nil
}

// GetObject downloads an object from the configured bucket.
// The returned reader must be closed by the caller.
func (c *Client) GetObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if objectName == "" {
		return nil, WrapError("GetObject", ErrInvalidObjectName, c.config.Bucket, objectName)
	}

	obj, err := c.client.GetObject(ctx, c.config.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, WrapError("GetObject", err, c.config.Bucket, objectName)
	}

	return obj, nil
}

// StatObject returns metadata about an object
func (c *Client) StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error) {
	info, err := c.client.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, WrapError("StatObject", err, c.config.Bucket, objectName)
	}
	return info, nil
}

// ObjectEntry summarizes one listed object
type ObjectEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListObjects lists all objects under the given prefix in the configured bucket
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]ObjectEntry, error) {
	var entries []ObjectEntry
	for info := range c.client.ListObjects(ctx, c.config.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, WrapError("ListObjects", info.Err, c.config.Bucket, prefix)
		}
		entries = append(entries, ObjectEntry{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	return entries, nil
}

// RemoveObject removes an object from the configured bucket
func (c *Client) RemoveObject(ctx context.Context, objectName string) error {
	if objectName == "" {
		return WrapError("RemoveObject", ErrInvalidObjectName, c.config.Bucket, objectName)
	}

	if err := c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return WrapError("RemoveObject", err, c.config.Bucket, objectName)
	}

	return nil
}
