package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/godilite/store-audit/internal/repository/models"
)

// RecomputeFunc rebuilds and persists the summary of one store.
type RecomputeFunc func(ctx context.Context, storeID string) (models.StoreSummary, error)

// Coordinator serializes summary recomputation per store. At most one
// recompute per store is in flight; different stores proceed in parallel.
//
// Every Reconcile call takes a ticket before it waits. A recompute covers
// every ticket issued before it started, so a caller whose ticket was covered
// while it waited returns that result instead of recomputing again.
type Coordinator struct {
	recompute RecomputeFunc
	locker    Locker
	logger    *zap.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  *semaphore.Weighted
	refs int

	// guarded by Coordinator.mu
	requested uint64
	covered   uint64
	last      models.StoreSummary
}

// NewCoordinator returns a Coordinator running recompute. locker may be nil,
// in which case serialization is process local.
func NewCoordinator(recompute RecomputeFunc, locker Locker, logger *zap.Logger) *Coordinator {
	if recompute == nil {
		panic("recompute must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &Coordinator{
		recompute: recompute,
		locker:    locker,
		logger:    logger.Named("coordinator"),
		slots:     make(map[string]*slot),
	}
}

// Reconcile returns a summary of storeID computed from a snapshot taken no
// earlier than the call.
func (c *Coordinator) Reconcile(ctx context.Context, storeID string) (models.StoreSummary, error) {
	s, ticket := c.acquire(storeID, true)
	defer c.release(storeID, s)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return models.StoreSummary{}, fmt.Errorf("wait for store %s: %w", storeID, err)
	}
	defer s.sem.Release(1)

	c.mu.Lock()
	if s.covered >= ticket {
		last := s.last
		c.mu.Unlock()
		c.logger.Debug("recompute coalesced", zap.String("store_id", storeID), zap.Uint64("ticket", ticket))
		return last, nil
	}
	start := s.requested
	c.mu.Unlock()

	summary, err := c.run(ctx, storeID)
	if err != nil {
		return models.StoreSummary{}, err
	}

	c.mu.Lock()
	s.covered = start
	s.last = summary
	c.mu.Unlock()
	return summary, nil
}

// WithStoreLock runs fn while holding the store's recompute slot. Cached
// results are discarded afterwards, so waiting Reconcile calls recompute.
func (c *Coordinator) WithStoreLock(ctx context.Context, storeID string, fn func(ctx context.Context) error) error {
	s, _ := c.acquire(storeID, false)
	defer c.release(storeID, s)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for store %s: %w", storeID, err)
	}
	defer s.sem.Release(1)

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, lockKey(storeID))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAggregationUnavailable, err)
		}
		defer unlock()
	}

	err := fn(ctx)

	c.mu.Lock()
	s.covered = 0
	s.last = models.StoreSummary{}
	c.mu.Unlock()
	return err
}

func (c *Coordinator) run(ctx context.Context, storeID string) (models.StoreSummary, error) {
	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, lockKey(storeID))
		if err != nil {
			c.logger.Warn("distributed lock unavailable", zap.String("store_id", storeID), zap.Error(err))
			return models.StoreSummary{}, fmt.Errorf("%w: %w", ErrAggregationUnavailable, err)
		}
		defer unlock()
	}
	return c.recompute(ctx, storeID)
}

func (c *Coordinator) acquire(storeID string, ticketed bool) (*slot, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[storeID]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		c.slots[storeID] = s
	}
	s.refs++

	var ticket uint64
	if ticketed {
		s.requested++
		ticket = s.requested
	}
	return s, ticket
}

func (c *Coordinator) release(storeID string, s *slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(c.slots, storeID)
	}
}

// inFlight reports how many stores currently hold a slot.
func (c *Coordinator) inFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func lockKey(storeID string) string {
	return "store:" + storeID
}
