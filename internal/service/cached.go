package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/store-audit/internal/repository/models"
)

const insightsKey = "audit:insights"

// CachedAuditService caches the cross-store insights report. Store summaries
// and ranking views are single-row reads and always come from storage, so a
// ranking view reflects the latest committed summary.
type CachedAuditService struct {
	*AuditService
	cache  Cacher
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedAuditService(svc *AuditService, c Cacher, ttl time.Duration, logger *zap.Logger) *CachedAuditService {
	if svc == nil || c == nil {
		panic("service and cache must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAuditService{
		AuditService: svc,
		cache:        c,
		ttl:          ttl,
		logger:       logger.Named("cache"),
	}
}

func (s *CachedAuditService) GetInsights(ctx context.Context) (Insights, error) {
	return FindAndCache(ctx, s.cache, &s.sf, insightsKey, s.ttl, s.logger, s.AuditService.GetInsights)
}

func (s *CachedAuditService) CreateStore(ctx context.Context, in CreateStoreInput) (models.Store, error) {
	store, err := s.AuditService.CreateStore(ctx, in)
	if err == nil {
		s.invalidateInsights()
	}
	return store, err
}

func (s *CachedAuditService) SubmitEvaluation(ctx context.Context, in SubmitEvaluationInput) (SubmitResult, error) {
	res, err := s.AuditService.SubmitEvaluation(ctx, in)
	// A stored evaluation invalidates even when the recompute failed.
	if err == nil || res.Evaluation.StoreID != "" {
		s.invalidateInsights()
	}
	return res, err
}

func (s *CachedAuditService) RetractEvaluation(ctx context.Context, storeID, evaluatorID string) (models.StoreSummary, error) {
	summary, err := s.AuditService.RetractEvaluation(ctx, storeID, evaluatorID)
	s.invalidateInsights()
	return summary, err
}

func (s *CachedAuditService) DeleteStore(ctx context.Context, storeID string) error {
	err := s.AuditService.DeleteStore(ctx, storeID)
	s.invalidateInsights()
	return err
}

func (s *CachedAuditService) invalidateInsights() {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Invalidate(ctx, insightsKey); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", insightsKey), zap.Error(err))
	}
}
