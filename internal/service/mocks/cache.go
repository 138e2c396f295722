package mocks

import (
	"context"
	"time"

	"github.com/godilite/store-audit/pkg/cache"
)

// MockCacher is a function-field mock of service.Cacher. Unset fields behave
// like an empty cache that accepts every write.
type MockCacher struct {
	GetFunc             func(ctx context.Context, key string, dest any) error
	GenerationFunc      func(ctx context.Context, key string) (int64, error)
	SetIfGenerationFunc func(ctx context.Context, key string, gen int64, value any, expiration time.Duration) (bool, error)
	InvalidateFunc      func(ctx context.Context, keys ...string) error
}

func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return cache.ErrCacheMiss
}

func (m *MockCacher) Generation(ctx context.Context, key string) (int64, error) {
	if m.GenerationFunc != nil {
		return m.GenerationFunc(ctx, key)
	}
	return 0, nil
}

func (m *MockCacher) SetIfGeneration(ctx context.Context, key string, gen int64, value any, expiration time.Duration) (bool, error) {
	if m.SetIfGenerationFunc != nil {
		return m.SetIfGenerationFunc(ctx, key, gen, value, expiration)
	}
	return true, nil
}

func (m *MockCacher) Invalidate(ctx context.Context, keys ...string) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, keys...)
	}
	return nil
}
