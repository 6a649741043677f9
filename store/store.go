package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/musubi-chat/musubi/store/cache"
)

// Store provides typed access to all persisted collections on top of a
// key-value Driver. Reads go through an in-process cache; every save rewrites
// the whole collection and invalidates its cache entry.
//
// Parse failures on read (corrupt stored data) degrade to an empty collection
// and are logged, never propagated. Only driver-level failures surface as
// errors.
type Store struct {
	driver Driver
	cache  *cache.Cache
	logger *slog.Logger
}

// New creates a new Store on top of the given driver.
func New(driver Driver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		driver: driver,
		cache: cache.New(cache.Config{
			DefaultTTL: 10 * time.Minute,
			MaxItems:   256,
		}),
		logger: logger,
	}
}

func (s *Store) Close() error {
	s.cache.Close()
	return s.driver.Close()
}

// getRaw reads a raw value, serving from cache when possible.
func (s *Store) getRaw(ctx context.Context, key string) (string, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return string(v), true, nil
	}
	value, ok, err := s.driver.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	s.cache.Set(key, []byte(value), 0)
	return value, true, nil
}

func (s *Store) setRaw(ctx context.Context, key, value string) error {
	if err := s.driver.Set(ctx, key, value); err != nil {
		return err
	}
	s.cache.Set(key, []byte(value), 0)
	return nil
}

func (s *Store) removeRaw(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.driver.Remove(ctx, key)
}

// loadCollection unmarshals a stored JSON collection into dst. Absent keys
// and corrupt values leave dst untouched (the caller starts from an empty
// collection).
func (s *Store) loadCollection(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding corrupt stored collection", "key", key, "error", err)
	}
	return nil
}

// saveCollection rewrites a stored JSON collection in full.
func (s *Store) saveCollection(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return s.setRaw(ctx, key, string(data))
}
