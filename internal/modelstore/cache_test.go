package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/config"
)

// countingStore counts Load calls and has no versions
type countingStore struct {
	mu    sync.Mutex
	model forecast.Model
	loads int
}

func (s *countingStore) Save(_ context.Context, m forecast.Model) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	return "mem", nil
}

func (s *countingStore) Load(_ context.Context, _ Handle) (forecast.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.model, nil
}

func (s *countingStore) Close() error { return nil }

func TestCache_ReloadsWhenFileChanges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewFileStore(path)
	cache := NewCache(store)

	h, err := store.Save(ctx, forecast.Model{Slope: 1, Intercept: 1})
	require.NoError(t, err)

	m, err := cache.Load(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Slope)

	_, err = cache.Load(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Stats()["hits"])

	_, err = store.Save(ctx, forecast.Model{Slope: 2, Intercept: 1})
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	m, err = cache.Load(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.Slope)
	assert.Equal(t, 2, cache.Stats()["misses"])
}

func TestCache_MissingFileDropsEntry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewFileStore(path)
	cache := NewCache(store)

	h, err := store.Save(ctx, forecast.Model{Slope: 1})
	require.NoError(t, err)
	_, err = cache.Load(ctx, h)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = cache.Load(ctx, h)
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.Equal(t, 0, cache.Stats()["entries"])
}

func TestCache_InvalidateAndClear(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{model: forecast.Model{Slope: 5}}
	cache := NewCache(store)

	for i := 0; i < 3; i++ {
		_, err := cache.Load(ctx, "a")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.loads)

	_, _ = store.Save(ctx, forecast.Model{Slope: 6})
	cache.Invalidate("a")
	m, err := cache.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 6.0, m.Slope)
	assert.Equal(t, 2, store.loads)

	_, err = cache.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Stats()["entries"])

	cache.Clear()
	assert.Equal(t, 0, cache.Stats()["entries"])
}

func TestCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(&countingStore{model: forecast.Model{Slope: 1}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				cache.Invalidate("k")
			}
			m, err := cache.Load(ctx, "k")
			assert.NoError(t, err)
			assert.Equal(t, 1.0, m.Slope)
		}(i)
	}
	wg.Wait()
}

func TestNewStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ModelStore.Path = filepath.Join(t.TempDir(), "m.json")

	store, err := NewStore(cfg)
	require.NoError(t, err)
	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, cfg.ModelStore.Path, fs.Path())

	cfg.ModelStore.Type = "s3"
	_, err = NewStore(cfg)
	assert.Error(t, err)
}
