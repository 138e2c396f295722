package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/store-audit/pkg/cache"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	refreshFetchTimeout = 15 * time.Second
	cacheWriteTimeout   = 5 * time.Second
	maxRefreshDelay     = time.Second
)

// addTTLJitter spreads expirations of long TTLs by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(30)-15)*time.Second
}

// readThrough loads one cache key. Every write is fenced by the generation
// read before the fetch, so a value loaded before an invalidation is never
// stored after it.
type readThrough[T any] struct {
	cache  Cacher
	sf     *singleflight.Group
	key    string
	ttl    time.Duration
	logger *zap.Logger
	fetch  FetchFunc[T]
}

func (r readThrough[T]) load(ctx context.Context) (T, error) {
	gen, genErr := r.cache.Generation(ctx, r.key)

	value, err := r.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if genErr != nil {
		r.logger.Warn("cache generation unavailable, not caching",
			zap.String("key", r.key), zap.Error(genErr))
		return value, nil
	}
	r.store(gen, value)
	return value, nil
}

func (r readThrough[T]) store(gen int64, value T) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	ttl := addTTLJitter(r.ttl)
	written, err := r.cache.SetIfGeneration(ctx, r.key, gen, value, ttl)
	switch {
	case err != nil:
		r.logger.Warn("cache write failed", zap.String("key", r.key), zap.Error(err))
	case !written:
		r.logger.Debug("cache write skipped, key invalidated during fetch", zap.String("key", r.key))
	default:
		r.logger.Debug("cache populated", zap.String("key", r.key), zap.Duration("ttl", ttl))
	}
}

// refresh reloads the key in the background so hot keys rarely expire.
func (r readThrough[T]) refresh() {
	go func() {
		time.Sleep(time.Duration(rand.Int63n(int64(maxRefreshDelay))))

		_, _, _ = r.sf.Do(r.key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshFetchTimeout)
			defer cancel()

			v, err := r.load(ctx)
			if err != nil {
				r.logger.Warn("background refresh failed", zap.String("key", r.key), zap.Error(err))
			}
			return v, err
		})
	}()
}

// FindAndCache serves key from c, fetching it once per concurrent miss.
// Cache errors degrade to a direct fetch.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := readThrough[T]{cache: c, sf: sf, key: key, ttl: ttl, logger: logger, fetch: fn}

	var cached T
	switch err := c.Get(ctx, key, &cached); {
	case err == nil:
		r.refresh()
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := sf.Do(key, func() (any, error) {
		return r.load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache %q: unexpected value type %T", key, v)
	}
	return value, nil
}
