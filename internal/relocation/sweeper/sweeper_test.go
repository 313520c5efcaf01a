package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relocity/relocation-backend/internal/pkg/logger"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]time.Time
}

func (f *fakeObjects) List(ctx context.Context, prefix string) ([]StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoredObject
	for key, modified := range f.objects {
		out = append(out, StoredObject{Key: key, LastModified: modified})
	}
	return out, nil
}

func (f *fakeObjects) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type fakeIndex struct {
	keys map[string]struct{}
}

func (f *fakeIndex) ReferencedStorageKeys(ctx context.Context) (map[string]struct{}, error) {
	return f.keys, nil
}

func TestSweepOnce(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	fresh := now.Add(-time.Hour)

	objects := &fakeObjects{objects: map[string]time.Time{
		"relocations/f1/blob.0": old,   // referenced, old: keep
		"relocations/f2/blob.0": old,   // orphaned, old: remove
		"relocations/f2/blob.1": old,   // orphaned, old: remove
		"relocations/f3/blob.0": fresh, // orphaned but inside grace period: keep
	}}
	index := &fakeIndex{keys: map[string]struct{}{
		"relocations/f1/blob.0": {},
	}}

	s, err := New(objects, index, DefaultConfig(), logger.Nop())
	require.NoError(t, err)
	s.clock = func() time.Time { return now }

	removed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.True(t, objects.has("relocations/f1/blob.0"), "referenced blob must survive")
	assert.False(t, objects.has("relocations/f2/blob.0"))
	assert.False(t, objects.has("relocations/f2/blob.1"))
	assert.True(t, objects.has("relocations/f3/blob.0"), "blobs inside the grace period must survive")
}

func TestSweepOnceNothingToDo(t *testing.T) {
	objects := &fakeObjects{objects: map[string]time.Time{}}
	index := &fakeIndex{keys: map[string]struct{}{}}

	s, err := New(objects, index, DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	removed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Interval: 0, GracePeriod: time.Hour, Workers: 1}).Validate())
	assert.Error(t, (&Config{Interval: time.Hour, GracePeriod: 0, Workers: 1}).Validate())
	assert.Error(t, (&Config{Interval: time.Hour, GracePeriod: time.Hour, Workers: 0}).Validate())
}

func TestStartStop(t *testing.T) {
	objects := &fakeObjects{objects: map[string]time.Time{}}
	index := &fakeIndex{keys: map[string]struct{}{}}

	cfg := &Config{Interval: 10 * time.Millisecond, GracePeriod: time.Hour, Workers: 1}
	s, err := New(objects, index, cfg, logger.Nop())
	require.NoError(t, err)

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
}
