package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrPoolClosed is returned when submitting to a released pool
var ErrPoolClosed = errors.New("worker pool is closed")

// Config defines the worker pool configuration
type Config struct {
	Workers int `mapstructure:"workers"`
}

// DefaultConfig returns default pool configuration
func DefaultConfig() *Config {
	return &Config{Workers: 8}
}

// Pool is a bounded worker pool built on ants
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a worker pool with the given configuration
func New(cfg *Config, logger *zap.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("invalid worker count: %d", cfg.Workers)
	}

	antsPool, err := ants.NewPool(cfg.Workers,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("worker panic", zap.Any("error", v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &Pool{
		pool:   antsPool,
		logger: logger,
	}, nil
}

// Submit schedules a task on the pool, blocking while all workers are busy
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPoolClosed
	}

	return p.pool.Submit(task)
}

// SubmitWait schedules a task and waits for it to finish, honoring ctx
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	done := make(chan struct{})

	if err := p.Submit(func() {
		defer close(done)
		task()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running returns the number of tasks currently executing
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Shutdown releases the pool, waiting for in-flight tasks
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.pool.Release()
}
