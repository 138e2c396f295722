package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/repository"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service/mocks"
)

func evals(avgs ...float64) []models.Evaluation {
	out := make([]models.Evaluation, len(avgs))
	for i, a := range avgs {
		out[i] = models.Evaluation{AverageRating: a}
	}
	return out
}

func TestSummarize(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		s := summarize("s1", nil, at)
		assert.Equal(t, models.StoreSummary{StoreID: "s1", UpdatedAt: at}, s)
	})

	t.Run("mean and count", func(t *testing.T) {
		s := summarize("s1", evals(5, 4, 3), at)
		assert.InDelta(t, 4.0, s.RatingAvg, 1e-9)
		assert.Equal(t, 3, s.RatingCount)
		assert.Zero(t, s.CriticalCount)
	})

	t.Run("critical count", func(t *testing.T) {
		e := evals(4.9, 4.0, 2.5)
		e[0].CriticalFail = true
		e[2].CriticalFail = true
		s := summarize("s1", e, at)
		assert.Equal(t, 2, s.CriticalCount)
	})
}

func TestAggregator_Recompute(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("writes all fields at once", func(t *testing.T) {
		var written []models.StoreSummary
		stores := &mocks.MockStoreRepository{
			UpdateSummaryFunc: func(ctx context.Context, s models.StoreSummary) error {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				written = append(written, s)
				return nil
			},
		}
		evaluations := &mocks.MockEvaluationRepository{
			ListByStoreFunc: func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
				assert.Equal(t, "s1", storeID)
				return evals(5, 4, 3), nil
			},
		}

		agg := NewAggregator(stores, evaluations, time.Second, logger)
		got, err := agg.Recompute(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, written, 1)
		assert.Equal(t, got, written[0])
		assert.Equal(t, 3, got.RatingCount)
	})

	t.Run("list failure leaves summary untouched", func(t *testing.T) {
		stores := &mocks.MockStoreRepository{
			UpdateSummaryFunc: func(ctx context.Context, s models.StoreSummary) error {
				t.Fatal("summary must not be written")
				return nil
			},
		}
		evaluations := &mocks.MockEvaluationRepository{
			ListByStoreFunc: func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
				return nil, errors.New("connection reset")
			},
		}

		agg := NewAggregator(stores, evaluations, time.Second, logger)
		_, err := agg.Recompute(ctx, "s1")
		assert.ErrorIs(t, err, ErrAggregationUnavailable)
	})

	t.Run("write failure", func(t *testing.T) {
		stores := &mocks.MockStoreRepository{
			UpdateSummaryFunc: func(ctx context.Context, s models.StoreSummary) error {
				return errors.New("disk full")
			},
		}
		evaluations := &mocks.MockEvaluationRepository{
			ListByStoreFunc: func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
				return evals(4), nil
			},
		}

		agg := NewAggregator(stores, evaluations, time.Second, logger)
		_, err := agg.Recompute(ctx, "s1")
		assert.ErrorIs(t, err, ErrAggregationUnavailable)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("store gone", func(t *testing.T) {
		stores := &mocks.MockStoreRepository{
			UpdateSummaryFunc: func(ctx context.Context, s models.StoreSummary) error {
				return repository.ErrNotFound
			},
		}
		evaluations := &mocks.MockEvaluationRepository{
			ListByStoreFunc: func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
				return nil, nil
			},
		}

		agg := NewAggregator(stores, evaluations, time.Second, logger)
		_, err := agg.Recompute(ctx, "s1")
		assert.ErrorIs(t, err, ErrStoreNotFound)
		assert.NotErrorIs(t, err, ErrAggregationUnavailable)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() { NewAggregator(nil, &mocks.MockEvaluationRepository{}, 0, logger) })
	})
}
