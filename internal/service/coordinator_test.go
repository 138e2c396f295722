package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service/mocks"
)

func (c *Coordinator) refs(storeID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[storeID]; ok {
		return s.refs
	}
	return 0
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func TestCoordinator_AtMostOneInFlight(t *testing.T) {
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		mu      sync.Mutex
	)
	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		n := inside.Add(1)
		mu.Lock()
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		inside.Add(-1)
		return models.StoreSummary{StoreID: storeID}, nil
	}, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Reconcile(context.Background(), "s1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, c.inFlight(), "idle slots are dropped")
}

func TestCoordinator_Coalesces(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		n := calls.Add(1)
		if n == 1 {
			started <- struct{}{}
			<-release
		}
		return models.StoreSummary{StoreID: storeID, RatingCount: int(n)}, nil
	}, nil, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]models.StoreSummary, 6)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		results[0], err = c.Reconcile(context.Background(), "s1")
		assert.NoError(t, err)
	}()
	<-started

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			results[i], err = c.Reconcile(context.Background(), "s1")
			assert.NoError(t, err)
		}()
	}
	waitFor(t, func() bool { return c.refs("s1") == len(results) })
	close(release)
	wg.Wait()

	assert.Equal(t, int32(2), calls.Load(), "waiters share one follow-up recompute")
	assert.Equal(t, 1, results[0].RatingCount)
	for _, r := range results[1:] {
		assert.Equal(t, 2, r.RatingCount, "waiters see a recompute started after they arrived")
	}
}

func TestCoordinator_StoresIndependent(t *testing.T) {
	bStarted := make(chan struct{})
	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		switch storeID {
		case "a":
			select {
			case <-bStarted:
			case <-time.After(2 * time.Second):
				return models.StoreSummary{}, errors.New("store b was blocked by store a")
			}
		case "b":
			close(bStarted)
		}
		return models.StoreSummary{StoreID: storeID}, nil
	}, nil, zap.NewNop())

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Reconcile(context.Background(), id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestCoordinator_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		close(started)
		<-release
		return models.StoreSummary{}, nil
	}, nil, zap.NewNop())

	go c.Reconcile(context.Background(), "s1")
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Reconcile(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	waitFor(t, func() bool { return c.inFlight() == 0 })
}

func TestCoordinator_FailureIsNotCovered(t *testing.T) {
	var calls atomic.Int32
	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		if calls.Add(1) == 1 {
			return models.StoreSummary{}, ErrAggregationUnavailable
		}
		return models.StoreSummary{RatingCount: 1}, nil
	}, nil, zap.NewNop())

	_, err := c.Reconcile(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrAggregationUnavailable)

	got, err := c.Reconcile(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RatingCount)
}

func TestCoordinator_Locker(t *testing.T) {
	recompute := func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		return models.StoreSummary{StoreID: storeID}, nil
	}

	t.Run("held around recompute", func(t *testing.T) {
		var keys []string
		unlocked := 0
		locker := &mocks.MockLocker{
			LockFunc: func(ctx context.Context, key string) (func(), error) {
				keys = append(keys, key)
				return func() { unlocked++ }, nil
			},
		}
		c := NewCoordinator(recompute, locker, zap.NewNop())
		_, err := c.Reconcile(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"store:s1"}, keys)
		assert.Equal(t, 1, unlocked)
	})

	t.Run("lock failure", func(t *testing.T) {
		locker := &mocks.MockLocker{
			LockFunc: func(ctx context.Context, key string) (func(), error) {
				return nil, errors.New("redis down")
			},
		}
		c := NewCoordinator(recompute, locker, zap.NewNop())
		_, err := c.Reconcile(context.Background(), "s1")
		assert.ErrorIs(t, err, ErrAggregationUnavailable)
	})
}

func TestCoordinator_WithStoreLock(t *testing.T) {
	var calls atomic.Int32
	c := NewCoordinator(func(ctx context.Context, storeID string) (models.StoreSummary, error) {
		calls.Add(1)
		return models.StoreSummary{}, nil
	}, nil, zap.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- c.WithStoreLock(context.Background(), "s1", func(ctx context.Context) error {
			close(entered)
			<-release
			return errors.New("boom")
		})
	}()
	<-entered

	reconciled := make(chan struct{})
	go func() {
		_, _ = c.Reconcile(context.Background(), "s1")
		close(reconciled)
	}()

	waitFor(t, func() bool { return c.refs("s1") == 2 })
	assert.Zero(t, calls.Load(), "recompute waits for the store lock")

	close(release)
	assert.EqualError(t, <-done, "boom")
	<-reconciled
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewCoordinator_NilRecomputePanics(t *testing.T) {
	assert.Panics(t, func() { NewCoordinator(nil, nil, nil) })
}
