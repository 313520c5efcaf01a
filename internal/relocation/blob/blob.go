package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relocity/relocation-backend/internal/pkg/logger"
)

var (
	// ErrCapacityExceeded means the upload is larger than the configured
	// maximum file size and was aborted mid-stream.
	ErrCapacityExceeded = errors.New("blob: upload exceeds maximum file size")
	// ErrStorageWrite means a blob could not be written to object storage.
	ErrStorageWrite = errors.New("blob: failed to write blob to storage")
	// ErrStorageRead means a blob could not be read back from object storage.
	ErrStorageRead = errors.New("blob: failed to read blob from storage")
)

// ObjectStore is the object storage surface the store needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Config bounds how large a logical file may grow. BlobSize is derived:
// MaxFileSize / MaxBlobCount, so the defaults give 32 blobs of 64MiB.
type Config struct {
	MaxFileSize  int64
	MaxBlobCount int
}

// DefaultConfig returns the standard 2GiB / 32 blob limits.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:  1 << 31,
		MaxBlobCount: 32,
	}
}

// BlobSize returns the fixed chunk size for this configuration.
func (c Config) BlobSize() int64 {
	return c.MaxFileSize / int64(c.MaxBlobCount)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxBlobCount <= 0 {
		return fmt.Errorf("max blob count must be positive, got %d", c.MaxBlobCount)
	}
	if c.MaxFileSize%int64(c.MaxBlobCount) != 0 {
		return fmt.Errorf("max file size %d is not a multiple of blob count %d", c.MaxFileSize, c.MaxBlobCount)
	}
	return nil
}

// Blob describes one stored chunk of a logical file.
type Blob struct {
	Sequence   int
	Offset     int64
	Length     int64
	StorageKey string
}

// LogicalFile is the result of chunking one upload stream.
type LogicalFile struct {
	ID       string
	Size     int64
	Checksum string
	Blobs    []Blob
}

// Store chunks upload streams into fixed-size blobs in object storage.
type Store struct {
	objects ObjectStore
	config  Config
	logger  *logger.Logger
}

// NewStore creates a blob store.
func NewStore(objects ObjectStore, cfg Config, log *logger.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blob configuration: %w", err)
	}
	return &Store{
		objects: objects,
		config:  cfg,
		logger:  log,
	}, nil
}

// Config returns the store's limits.
func (s *Store) Config() Config {
	return s.config
}

func blobKey(fileID string, sequence int) string {
	return fmt.Sprintf("relocations/%s/blob.%d", fileID, sequence)
}

// Write consumes r into sequential fixed-size blobs, holding at most one
// blob's worth of data in memory at a time. Reads observe ctx, so a
// stalled stream fails once the deadline passes instead of blocking a
// worker indefinitely. If the stream exceeds MaxFileSize the partial
// blobs are removed best-effort and ErrCapacityExceeded is returned.
func (s *Store) Write(ctx context.Context, r io.Reader) (*LogicalFile, error) {
	fileID := uuid.New().String()
	buf := make([]byte, s.config.BlobSize())
	hasher := sha256.New()

	src := &contextReader{ctx: ctx, r: r}
	file := &LogicalFile{ID: fileID}

	for seq := 0; ; seq++ {
		n, err := io.ReadFull(src, buf)
		if err == io.EOF {
			// Stream ended exactly on a blob boundary (or was empty).
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			s.cleanup(ctx, file)
			return nil, fmt.Errorf("failed to read upload stream: %w", err)
		}

		if seq >= s.config.MaxBlobCount {
			s.cleanup(ctx, file)
			return nil, ErrCapacityExceeded
		}

		chunk := buf[:n]
		hasher.Write(chunk)

		key := blobKey(fileID, seq)
		if perr := s.objects.Put(ctx, key, bytes.NewReader(chunk), int64(n)); perr != nil {
			s.cleanup(ctx, file)
			return nil, errors.Join(ErrStorageWrite, perr)
		}

		file.Blobs = append(file.Blobs, Blob{
			Sequence:   seq,
			Offset:     file.Size,
			Length:     int64(n),
			StorageKey: key,
		})
		file.Size += int64(n)

		// A short read means the stream is exhausted.
		if int64(n) < s.config.BlobSize() {
			break
		}
	}

	file.Checksum = hex.EncodeToString(hasher.Sum(nil))

	if s.logger != nil {
		s.logger.Debug("upload chunked into blobs",
			zap.String("file_id", file.ID),
			zap.Int64("size", file.Size),
			zap.Int("blobs", len(file.Blobs)),
		)
	}

	return file, nil
}

// Open returns a reader over the logical file's full contents, fetching
// blobs one at a time in sequence order.
func (s *Store) Open(ctx context.Context, f *LogicalFile) io.ReadCloser {
	return &fileReader{
		ctx:     ctx,
		objects: s.objects,
		blobs:   f.Blobs,
	}
}

// Remove deletes all blobs of a logical file from object storage.
func (s *Store) Remove(ctx context.Context, f *LogicalFile) error {
	var firstErr error
	for _, b := range f.Blobs {
		if err := s.objects.Remove(ctx, b.StorageKey); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// cleanup removes already-written blobs after a failed Write. It runs even
// when the write context is already done; failures are logged and left for
// the orphan sweeper.
func (s *Store) cleanup(ctx context.Context, f *LogicalFile) {
	ctx = context.WithoutCancel(ctx)
	for _, b := range f.Blobs {
		if err := s.objects.Remove(ctx, b.StorageKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove orphaned blob, leaving for sweeper",
				zap.String("key", b.StorageKey),
				zap.Error(err),
			)
		}
	}
}

// contextReader fails reads once its context is done, even if the
// underlying reader is blocked mid-call. The inner read runs in a
// goroutine against a shadow buffer, so an abandoned read can never
// scribble on the caller's buffer after return; once the context is done
// every later call fails fast and the shadow buffer is never reused.
type contextReader struct {
	ctx context.Context
	r   io.Reader
	buf []byte
}

type readResult struct {
	n   int
	err error
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	if cap(cr.buf) < len(p) {
		cr.buf = make([]byte, len(p))
	}
	buf := cr.buf[:len(p)]

	ch := make(chan readResult, 1)
	go func() {
		n, err := cr.r.Read(buf)
		ch <- readResult{n: n, err: err}
	}()

	select {
	case res := <-ch:
		copy(p, buf[:res.n])
		return res.n, res.err
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	}
}

// fileReader stitches sequential blobs back into one stream.
type fileReader struct {
	ctx     context.Context
	objects ObjectStore
	blobs   []Blob
	index   int
	current io.ReadCloser
}

func (r *fileReader) Read(p []byte) (int, error) {
	for {
		if r.current == nil {
			if r.index >= len(r.blobs) {
				return 0, io.EOF
			}
			rc, err := r.objects.Get(r.ctx, r.blobs[r.index].StorageKey)
			if err != nil {
				return 0, errors.Join(ErrStorageRead, err)
			}
			r.current = rc
		}

		n, err := r.current.Read(p)
		if err == io.EOF {
			r.current.Close()
			r.current = nil
			r.index++
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (r *fileReader) Close() error {
	if r.current != nil {
		err := r.current.Close()
		r.current = nil
		return err
	}
	return nil
}
