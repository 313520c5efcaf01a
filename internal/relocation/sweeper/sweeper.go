package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/pkg/workerpool"
)

// blobPrefix is where relocation blobs live in the bucket.
const blobPrefix = "relocations/"

// StoredObject is one object found in the bucket.
type StoredObject struct {
	Key          string
	LastModified time.Time
}

// ObjectLister enumerates and removes stored objects.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	Remove(ctx context.Context, key string) error
}

// KeyIndex reports which storage keys the database still references.
type KeyIndex interface {
	ReferencedStorageKeys(ctx context.Context) (map[string]struct{}, error)
}

// Config controls sweep cadence and safety margin.
type Config struct {
	Interval    time.Duration `mapstructure:"interval"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
	Workers     int           `mapstructure:"workers"`
}

// DefaultConfig returns conservative sweep settings.
func DefaultConfig() *Config {
	return &Config{
		Interval:    time.Hour,
		GracePeriod: 24 * time.Hour,
		Workers:     4,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Interval)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive, got %s", c.GracePeriod)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers)
	}
	return nil
}

// Sweeper periodically removes blobs that no database row references.
// Blobs become orphans when an upload fails after some chunks were stored,
// or when the job-creation transaction loses an admission race and the
// best-effort cleanup also fails. The grace period keeps the sweeper from
// racing in-flight uploads whose rows are not committed yet.
type Sweeper struct {
	objects ObjectLister
	index   KeyIndex
	config  *Config
	pool    *workerpool.Pool
	logger  *logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	clock    func() time.Time
}

// New creates a sweeper.
func New(objects ObjectLister, index KeyIndex, cfg *Config, log *logger.Logger) (*Sweeper, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweeper configuration: %w", err)
	}

	pool, err := workerpool.New(&workerpool.Config{Workers: cfg.Workers}, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweeper pool: %w", err)
	}

	return &Sweeper{
		objects: objects,
		index:   index,
		config:  cfg,
		pool:    pool,
		logger:  log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		clock:   time.Now,
	}, nil
}

// Start launches the periodic sweep loop in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed, err := s.SweepOnce(ctx)
				if err != nil {
					s.logger.Error("sweep pass failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					s.logger.Info("sweep pass removed orphaned blobs", zap.Int("removed", removed))
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for in-flight removals to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	s.pool.Shutdown()
}

// SweepOnce runs a single sweep pass and returns how many orphaned blobs
// were removed. Objects younger than the grace period are never touched.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	referenced, err := s.index.ReferencedStorageKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load referenced storage keys: %w", err)
	}

	objects, err := s.objects.List(ctx, blobPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored blobs: %w", err)
	}

	cutoff := s.clock().Add(-s.config.GracePeriod)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		removed int
	)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}

		key := obj.Key
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			if rerr := s.objects.Remove(ctx, key); rerr != nil {
				s.logger.Warn("failed to remove orphaned blob",
					zap.String("key", key),
					zap.Error(rerr),
				)
				return
			}
			mu.Lock()
			removed++
			mu.Unlock()
		}); err != nil {
			wg.Done()
			s.logger.Warn("failed to schedule blob removal", zap.Error(err))
		}
	}
	wg.Wait()

	return removed, nil
}
