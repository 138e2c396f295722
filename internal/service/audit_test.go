package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/scoring"
	"github.com/godilite/store-audit/internal/service/mocks"
)

func defaultEngine(t testing.TB) *scoring.Engine {
	t.Helper()
	e, err := scoring.NewEngine(scoring.DefaultPolicy())
	require.NoError(t, err)
	return e
}

// answers returns a complete default answer set with every question set to
// v, then applies overrides.
func answers(v int, overrides map[int]int) map[int]int {
	a := make(map[int]int, scoring.DefaultQuestionCount)
	for q := 1; q <= scoring.DefaultQuestionCount; q++ {
		a[q] = v
	}
	for q, o := range overrides {
		a[q] = o
	}
	return a
}

type mockRepos struct {
	stores      *mocks.MockStoreRepository
	evaluations *mocks.MockEvaluationRepository
	reports     *mocks.MockReportRepository
}

func newMockRepos() mockRepos {
	return mockRepos{
		stores:      &mocks.MockStoreRepository{},
		evaluations: &mocks.MockEvaluationRepository{},
		reports:     &mocks.MockReportRepository{},
	}
}

func (m mockRepos) service(t *testing.T, opts ...Option) *AuditService {
	return NewAuditService(Repositories{
		Stores:      m.stores,
		Evaluations: m.evaluations,
		Reports:     m.reports,
	}, defaultEngine(t), zap.NewNop(), opts...)
}

func existingStore(ctx context.Context, id string) (models.Store, error) {
	return models.Store{ID: id, Name: "Store " + id, Summary: models.StoreSummary{StoreID: id}}, nil
}

func TestNewAuditService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		m := newMockRepos()
		svc := m.service(t)
		assert.NotNil(t, svc)
		assert.Equal(t, defaultStorageTimeout, svc.timeout)
		assert.Nil(t, svc.coordinator.locker)
	})

	t.Run("options", func(t *testing.T) {
		m := newMockRepos()
		locker := &mocks.MockLocker{}
		svc := m.service(t, WithLocker(locker), WithStorageTimeout(5*time.Second))
		assert.Equal(t, locker, svc.coordinator.locker)
		assert.Equal(t, 5*time.Second, svc.timeout)
		assert.Equal(t, 5*time.Second, svc.aggregator.timeout)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAuditService(Repositories{}, defaultEngine(t), zap.NewNop())
		})
	})

	t.Run("nil engine panics", func(t *testing.T) {
		m := newMockRepos()
		assert.Panics(t, func() {
			NewAuditService(Repositories{Stores: m.stores, Evaluations: m.evaluations, Reports: m.reports}, nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		m := newMockRepos()
		svc := NewAuditService(Repositories{Stores: m.stores, Evaluations: m.evaluations, Reports: m.reports}, defaultEngine(t), nil)
		assert.NotNil(t, svc.logger)
	})
}

func TestCreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name", func(t *testing.T) {
		m := newMockRepos()
		_, err := m.service(t).CreateStore(ctx, CreateStoreInput{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("trims and assigns id", func(t *testing.T) {
		m := newMockRepos()
		m.stores.CreateFunc = func(ctx context.Context, s models.Store) (models.Store, error) {
			return s, nil
		}
		store, err := m.service(t).CreateStore(ctx, CreateStoreInput{Name: " Corner Shop ", City: " Porto "})
		require.NoError(t, err)
		assert.Equal(t, "Corner Shop", store.Name)
		assert.Equal(t, "Porto", store.City)
		assert.Len(t, store.ID, 36)
		assert.False(t, store.CreatedAt.IsZero())
	})

	t.Run("storage failure", func(t *testing.T) {
		m := newMockRepos()
		m.stores.CreateFunc = func(ctx context.Context, s models.Store) (models.Store, error) {
			return models.Store{}, errors.New("db down")
		}
		_, err := m.service(t).CreateStore(ctx, CreateStoreInput{Name: "x"})
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestSubmitEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing evaluator", func(t *testing.T) {
		m := newMockRepos()
		_, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", Answers: answers(4, nil)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("incomplete answers are not persisted", func(t *testing.T) {
		m := newMockRepos()
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			t.Fatal("incomplete evaluation persisted")
			return e, nil
		}
		a := answers(4, nil)
		delete(a, 7)

		_, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", EvaluatorID: "u1", Answers: a})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.ErrorIs(t, err, scoring.ErrIncompleteAnswers)
	})

	t.Run("out of range answer", func(t *testing.T) {
		m := newMockRepos()
		_, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{
			StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, map[int]int{3: 9}),
		})
		assert.ErrorIs(t, err, scoring.ErrOutOfRangeAnswer)
	})

	t.Run("unknown store", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = func(ctx context.Context, id string) (models.Store, error) {
			return models.Store{}, repository.ErrNotFound
		}
		_, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil)})
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("stores derived fields and reconciles", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		var stored models.Evaluation
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			stored = e
			return e, nil
		}
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return []models.Evaluation{stored}, nil
		}
		m.stores.UpdateSummaryFunc = func(ctx context.Context, s models.StoreSummary) error { return nil }

		res, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{
			StoreID: "s1", EvaluatorID: "u1", Answers: answers(5, map[int]int{16: 2}), Comment: " dirty floor ",
		})
		require.NoError(t, err)
		assert.InDelta(t, 97.0/20, res.Evaluation.AverageRating, 1e-9)
		assert.True(t, res.Evaluation.CriticalFail)
		assert.Equal(t, []int{16}, res.Evaluation.FailedCriticalQuestions)
		assert.Equal(t, "dirty floor", res.Evaluation.Comment)
		assert.Equal(t, 1, res.Summary.CriticalCount)
		assert.Equal(t, ranking.StatusCritical, res.Ranking.Status)
	})

	t.Run("aggregation failure keeps evaluation", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			return e, nil
		}
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return nil, errors.New("timeout")
		}

		res, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil)})
		assert.ErrorIs(t, err, ErrAggregationUnavailable)
		assert.Equal(t, "u1", res.Evaluation.EvaluatorID)
		assert.InDelta(t, 4.0, res.Evaluation.AverageRating, 1e-9)
	})

	t.Run("store deleted after the write", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			return e, nil
		}
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return nil, nil
		}
		m.stores.UpdateSummaryFunc = func(ctx context.Context, s models.StoreSummary) error {
			return repository.ErrNotFound
		}

		res, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil)})
		assert.ErrorIs(t, err, ErrStoreNotFound)
		assert.Empty(t, res.Evaluation.StoreID)
	})

	t.Run("check and write hold the store lock", func(t *testing.T) {
		m := newMockRepos()
		var mu sync.Mutex
		held := false
		locker := &mocks.MockLocker{
			LockFunc: func(ctx context.Context, key string) (func(), error) {
				mu.Lock()
				held = true
				mu.Unlock()
				return func() {
					mu.Lock()
					held = false
					mu.Unlock()
				}, nil
			},
		}
		isHeld := func() bool {
			mu.Lock()
			defer mu.Unlock()
			return held
		}
		m.stores.GetFunc = func(ctx context.Context, id string) (models.Store, error) {
			assert.True(t, isHeld(), "existence check outside the lock")
			return models.Store{ID: id}, nil
		}
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			assert.True(t, isHeld(), "upsert outside the lock")
			return e, nil
		}
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return nil, nil
		}
		m.stores.UpdateSummaryFunc = func(ctx context.Context, s models.StoreSummary) error { return nil }

		_, err := m.service(t, WithLocker(locker)).SubmitEvaluation(ctx, SubmitEvaluationInput{
			StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil),
		})
		require.NoError(t, err)
	})

	t.Run("lock unavailable stores nothing", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			t.Fatal("stored without the lock")
			return e, nil
		}
		locker := &mocks.MockLocker{
			LockFunc: func(ctx context.Context, key string) (func(), error) {
				return nil, errors.New("redis down")
			},
		}
		_, err := m.service(t, WithLocker(locker)).SubmitEvaluation(ctx, SubmitEvaluationInput{
			StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil),
		})
		assert.ErrorIs(t, err, ErrAggregationUnavailable)
	})

	t.Run("upsert failure", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.UpsertFunc = func(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
			return models.Evaluation{}, errors.New("locked")
		}
		_, err := m.service(t).SubmitEvaluation(ctx, SubmitEvaluationInput{StoreID: "s1", EvaluatorID: "u1", Answers: answers(4, nil)})
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestRetractEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		m := newMockRepos()
		m.evaluations.DeleteFunc = func(ctx context.Context, storeID, evaluatorID string) error {
			return repository.ErrNotFound
		}
		_, err := m.service(t).RetractEvaluation(ctx, "s1", "u1")
		assert.ErrorIs(t, err, ErrEvaluationNotFound)
	})

	t.Run("recomputes", func(t *testing.T) {
		m := newMockRepos()
		m.evaluations.DeleteFunc = func(ctx context.Context, storeID, evaluatorID string) error { return nil }
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return evals(3), nil
		}
		m.stores.UpdateSummaryFunc = func(ctx context.Context, s models.StoreSummary) error { return nil }

		summary, err := m.service(t).RetractEvaluation(ctx, "s1", "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.RatingCount)
	})
}

func TestDeleteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade order", func(t *testing.T) {
		m := newMockRepos()
		var order []string
		m.stores.GetFunc = existingStore
		m.evaluations.DeleteAllForStoreFunc = func(ctx context.Context, storeID string) (int64, error) {
			order = append(order, "evaluations")
			return 2, nil
		}
		m.reports.DeleteAllForStoreFunc = func(ctx context.Context, storeID string) (int64, error) {
			order = append(order, "reports")
			return 0, nil
		}
		m.stores.DeleteFunc = func(ctx context.Context, id string) error {
			order = append(order, "store")
			return nil
		}

		require.NoError(t, m.service(t).DeleteStore(ctx, "s1"))
		assert.Equal(t, []string{"evaluations", "reports", "store"}, order)
	})

	t.Run("unknown store", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = func(ctx context.Context, id string) (models.Store, error) {
			return models.Store{}, repository.ErrNotFound
		}
		assert.ErrorIs(t, m.service(t).DeleteStore(ctx, "s1"), ErrStoreNotFound)
	})

	t.Run("evaluation delete failure keeps store", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.DeleteAllForStoreFunc = func(ctx context.Context, storeID string) (int64, error) {
			return 0, errors.New("db down")
		}
		m.stores.DeleteFunc = func(ctx context.Context, id string) error {
			t.Fatal("store removed before its evaluations")
			return nil
		}
		assert.ErrorIs(t, m.service(t).DeleteStore(ctx, "s1"), ErrStorageFailure)
	})

	t.Run("store delete failure restores summary", func(t *testing.T) {
		m := newMockRepos()
		m.stores.GetFunc = existingStore
		m.evaluations.DeleteAllForStoreFunc = func(ctx context.Context, storeID string) (int64, error) { return 3, nil }
		m.reports.DeleteAllForStoreFunc = func(ctx context.Context, storeID string) (int64, error) { return 0, nil }
		m.stores.DeleteFunc = func(ctx context.Context, id string) error { return errors.New("db down") }
		m.evaluations.ListByStoreFunc = func(ctx context.Context, storeID string) ([]models.Evaluation, error) {
			return nil, nil
		}
		var restored *models.StoreSummary
		m.stores.UpdateSummaryFunc = func(ctx context.Context, s models.StoreSummary) error {
			restored = &s
			return nil
		}

		err := m.service(t).DeleteStore(ctx, "s1")
		assert.ErrorIs(t, err, ErrStorageFailure)
		require.NotNil(t, restored)
		assert.Zero(t, restored.RatingCount)
	})
}

func TestListRanked(t *testing.T) {
	ctx := context.Background()
	all := []models.Store{
		{ID: "a", Summary: models.StoreSummary{RatingAvg: 4.0, RatingCount: 3}},
		{ID: "b", Summary: models.StoreSummary{}},
		{ID: "c", Summary: models.StoreSummary{RatingAvg: 4.8, RatingCount: 2}},
	}
	m := newMockRepos()
	m.stores.ListFunc = func(ctx context.Context) ([]models.Store, error) { return all, nil }
	m.stores.GetFunc = func(ctx context.Context, id string) (models.Store, error) {
		for _, s := range all {
			if s.ID == id {
				return s, nil
			}
		}
		return models.Store{}, repository.ErrNotFound
	}
	svc := m.service(t)

	ids := func(entries []ranking.Entry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Store.ID
		}
		return out
	}

	t.Run("all stores", func(t *testing.T) {
		got, err := svc.ListRanked(ctx, RankQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids(got))
	})

	t.Run("reviewed only with limit", func(t *testing.T) {
		got, err := svc.ListRanked(ctx, RankQuery{ReviewedOnly: true, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(got))
	})

	t.Run("selected stores", func(t *testing.T) {
		got, err := svc.ListRanked(ctx, RankQuery{StoreIDs: []string{"b", "a", "a"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(got))
	})

	t.Run("unknown selected store", func(t *testing.T) {
		_, err := svc.ListRanked(ctx, RankQuery{StoreIDs: []string{"a", "zzz"}})
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := svc.ListRanked(ctx, RankQuery{Limit: -1})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestReportEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("reason required", func(t *testing.T) {
		m := newMockRepos()
		_, err := m.service(t).ReportEvaluation(ctx, ReportInput{StoreID: "s1", EvaluatorID: "u1", ReportedBy: "u2", Reason: " "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("evaluation must exist", func(t *testing.T) {
		m := newMockRepos()
		m.evaluations.GetFunc = func(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
			return models.Evaluation{}, repository.ErrNotFound
		}
		_, err := m.service(t).ReportEvaluation(ctx, ReportInput{StoreID: "s1", EvaluatorID: "u1", ReportedBy: "u2", Reason: "spam"})
		assert.ErrorIs(t, err, ErrEvaluationNotFound)
	})

	t.Run("created open", func(t *testing.T) {
		m := newMockRepos()
		m.evaluations.GetFunc = func(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
			return models.Evaluation{StoreID: storeID, EvaluatorID: evaluatorID}, nil
		}
		m.reports.CreateFunc = func(ctx context.Context, r models.Report) (models.Report, error) { return r, nil }

		r, err := m.service(t).ReportEvaluation(ctx, ReportInput{StoreID: "s1", EvaluatorID: "u1", ReportedBy: "u2", Reason: "spam"})
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusOpen, r.Status)
		assert.NotEmpty(t, r.ID)
	})
}
