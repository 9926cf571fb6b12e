// Package cached wraps a collection store with a read-through cache. Cache
// keys match the ones collections invalidate on save, so a saved collection
// is reread from the underlying store.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/folio-cms/folio/internal/cache"
	"github.com/folio-cms/folio/internal/collections"
	"go.uber.org/zap"
)

// Store is a caching collections.Store
type Store struct {
	next   collections.Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// New wraps next. A zero ttl uses the cache default.
func New(next collections.Store, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Put writes through and drops the cached copies
func (s *Store) Put(ctx context.Context, snapshot collections.Snapshot) error {
	if err := s.next.Put(ctx, snapshot); err != nil {
		return err
	}
	s.invalidate(ctx, snapshot.Handle)
	return nil
}

// Get returns the cached snapshot or loads and caches it
func (s *Store) Get(ctx context.Context, handle string) (collections.Snapshot, error) {
	key := collections.CacheKey(handle)

	var snapshot collections.Snapshot
	decode := func(data []byte) (err error) {
		snapshot, err = collections.DecodeSnapshot(data)
		return err
	}
	if s.load(ctx, key, decode) {
		return snapshot, nil
	}

	snapshot, err := s.next.Get(ctx, handle)
	if err != nil {
		return snapshot, err
	}
	s.store(ctx, key, snapshot)
	return snapshot, nil
}

// Delete removes through and drops the cached copies
func (s *Store) Delete(ctx context.Context, handle string) error {
	if err := s.next.Delete(ctx, handle); err != nil {
		return err
	}
	s.invalidate(ctx, handle)
	return nil
}

// Handles returns the cached handle list or loads and caches it
func (s *Store) Handles(ctx context.Context) ([]string, error) {
	var handles []string
	decode := func(data []byte) error {
		return json.Unmarshal(data, &handles)
	}
	if s.load(ctx, collections.HandlesCacheKey, decode) {
		return handles, nil
	}

	handles, err := s.next.Handles(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, collections.HandlesCacheKey, handles)
	return handles, nil
}

// load reports whether key was cached and accepted by decode. Cache failures
// fall back to the underlying store.
func (s *Store) load(ctx context.Context, key string, decode func([]byte) error) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := decode(data); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) invalidate(ctx context.Context, handle string) {
	if err := s.cache.Delete(ctx, collections.HandlesCacheKey); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", collections.HandlesCacheKey), zap.Error(err))
	}
	if err := s.cache.DeletePrefix(ctx, collections.CacheKey(handle)); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", collections.CacheKey(handle)), zap.Error(err))
	}
}
