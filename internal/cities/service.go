package cities

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/airwatch-bd/airwatch/internal/shared"
)

// Store is the persistence port of the catalog.
type Store interface {
	List(ctx context.Context) ([]City, error)
	FindByNames(ctx context.Context, names []string) ([]City, error)
}

// Service exposes the catalog with a Redis read-through cache. Concurrent misses
// share one database load.
type Service struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs the catalog service. cache may be nil.
func NewService(store Store, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// List returns all cities ordered by name.
func (s *Service) List(ctx context.Context) ([]City, error) {
	v, err, _ := s.group.Do("list", func() (any, error) {
		return s.list(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]City), nil
}

func (s *Service) list(ctx context.Context) ([]City, error) {
	key, err := s.cache.BuildKey(ctx, "list")
	if err != nil {
		s.logger.Warn("cities cache unavailable", slog.Any("error", err))
		return s.store.List(ctx)
	}
	var out []City
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.store.List(ctx)
	})
	if err == nil {
		return out, nil
	}
	if errors.Is(err, shared.ErrStoreUnavailable) {
		return nil, err
	}
	s.logger.Warn("cities cache fetch", slog.Any("error", err))
	return s.store.List(ctx)
}

// FindByNames returns the catalog rows matching names, ordered by name.
func (s *Service) FindByNames(ctx context.Context, names []string) ([]City, error) {
	return s.store.FindByNames(ctx, names)
}

// Exists reports whether name is a catalogued city.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	found, err := s.FindByNames(ctx, []string{name})
	if err != nil {
		return false, fmt.Errorf("cities: exists: %w", err)
	}
	return len(found) == 1, nil
}

// Readings returns every city with its AQI category.
func (s *Service) Readings(ctx context.Context) ([]Reading, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Classify(all), nil
}
