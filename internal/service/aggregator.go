package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/repository"
	"github.com/godilite/store-audit/internal/repository/models"
)

// Aggregator rebuilds a store summary from the full set of its evaluations.
// Summaries are never patched incrementally.
type Aggregator struct {
	stores      StoreRepository
	evaluations EvaluationRepository
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewAggregator(stores StoreRepository, evaluations EvaluationRepository, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if stores == nil || evaluations == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &Aggregator{
		stores:      stores,
		evaluations: evaluations,
		timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.Named("aggregator"),
	}
}

// Recompute lists every evaluation of storeID and writes the resulting
// summary in a single update. On failure the stored summary is unchanged.
func (a *Aggregator) Recompute(ctx context.Context, storeID string) (models.StoreSummary, error) {
	listCtx, cancel := context.WithTimeout(ctx, a.timeout)
	evals, err := a.evaluations.ListByStore(listCtx, storeID)
	cancel()
	if err != nil {
		a.logger.Warn("list evaluations failed", zap.String("store_id", storeID), zap.Error(err))
		return models.StoreSummary{}, fmt.Errorf("%w: list evaluations: %w", ErrAggregationUnavailable, err)
	}

	summary := summarize(storeID, evals, a.now())

	writeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.stores.UpdateSummary(writeCtx, summary); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.StoreSummary{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
		}
		a.logger.Warn("write summary failed", zap.String("store_id", storeID), zap.Error(err))
		return models.StoreSummary{}, fmt.Errorf("%w: write summary: %w", ErrAggregationUnavailable, err)
	}

	a.logger.Debug("summary recomputed",
		zap.String("store_id", storeID),
		zap.Float64("rating_avg", summary.RatingAvg),
		zap.Int("rating_count", summary.RatingCount),
		zap.Int("critical_count", summary.CriticalCount))

	return summary, nil
}

func summarize(storeID string, evals []models.Evaluation, at time.Time) models.StoreSummary {
	s := models.StoreSummary{StoreID: storeID, UpdatedAt: at}
	if len(evals) == 0 {
		return s
	}

	var sum float64
	for _, e := range evals {
		sum += e.AverageRating
		if e.CriticalFail {
			s.CriticalCount++
		}
	}
	s.RatingCount = len(evals)
	s.RatingAvg = sum / float64(len(evals))
	return s
}
