package cities

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch-bd/airwatch/internal/aqi"
	"github.com/airwatch-bd/airwatch/internal/shared"
)

type stubStore struct {
	mu        sync.Mutex
	cities    []City
	listCalls int
	err       error
}

func (s *stubStore) List(ctx context.Context) ([]City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]City(nil), s.cities...), nil
}

func (s *stubStore) FindByNames(ctx context.Context, names []string) ([]City, error) {
	if s.err != nil {
		return nil, s.err
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var out []City
	for _, c := range s.cities {
		if want[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func seedCities() []City {
	return []City{{Name: "Dhaka", AQI: 150}, {Name: "Khulna", AQI: 140}, {Name: "Sylhet", AQI: 45}}
}

func newCachedService(t *testing.T, store Store) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	return NewService(store, cache, nil), cache
}

func TestServiceListUsesCache(t *testing.T) {
	store := &stubStore{cities: seedCities()}
	svc, _ := newCachedService(t, store)
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
	assert.Equal(t, 1, store.calls())
}

func TestServiceBumpInvalidates(t *testing.T) {
	store := &stubStore{cities: seedCities()}
	svc, cache := newCachedService(t, store)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	_, err = svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls())
}

func TestServiceWithoutCache(t *testing.T) {
	store := &stubStore{cities: seedCities()}
	svc := NewService(store, nil, nil)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls())
}

func TestServiceStoreFailure(t *testing.T) {
	store := &stubStore{err: fmt.Errorf("%w: boom", shared.ErrStoreUnavailable)}
	svc, _ := newCachedService(t, store)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestServiceExists(t *testing.T) {
	svc := NewService(&stubStore{cities: seedCities()}, nil, nil)

	ok, err := svc.Exists(context.Background(), "Dhaka")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceReadings(t *testing.T) {
	svc := NewService(&stubStore{cities: seedCities()}, nil, nil)

	readings, err := svc.Readings(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, aqi.LevelUnhealthyForSensitiveGroups, readings[0].Category.Level)
	assert.Equal(t, aqi.LevelGood, readings[2].Category.Level)
}
