package mocks

import (
	"context"
	"errors"

	"github.com/godilite/store-audit/internal/repository/models"
)

// MockStoreRepository is a mock implementation of the StoreRepository
// interface for testing the service layer.
type MockStoreRepository struct {
	CreateFunc        func(ctx context.Context, store models.Store) (models.Store, error)
	GetFunc           func(ctx context.Context, id string) (models.Store, error)
	ListFunc          func(ctx context.Context) ([]models.Store, error)
	DeleteFunc        func(ctx context.Context, id string) error
	UpdateSummaryFunc func(ctx context.Context, summary models.StoreSummary) error
}

func (m *MockStoreRepository) Create(ctx context.Context, store models.Store) (models.Store, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, store)
	}
	return models.Store{}, errors.New("CreateFunc not implemented")
}

func (m *MockStoreRepository) Get(ctx context.Context, id string) (models.Store, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.Store{}, errors.New("GetFunc not implemented")
}

func (m *MockStoreRepository) List(ctx context.Context) ([]models.Store, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *MockStoreRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}

func (m *MockStoreRepository) UpdateSummary(ctx context.Context, summary models.StoreSummary) error {
	if m.UpdateSummaryFunc != nil {
		return m.UpdateSummaryFunc(ctx, summary)
	}
	return errors.New("UpdateSummaryFunc not implemented")
}

// MockEvaluationRepository is a mock implementation of the
// EvaluationRepository interface.
type MockEvaluationRepository struct {
	UpsertFunc            func(ctx context.Context, e models.Evaluation) (models.Evaluation, error)
	GetFunc               func(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error)
	ListByStoreFunc       func(ctx context.Context, storeID string) ([]models.Evaluation, error)
	DeleteFunc            func(ctx context.Context, storeID, evaluatorID string) error
	DeleteAllForStoreFunc func(ctx context.Context, storeID string) (int64, error)
}

func (m *MockEvaluationRepository) Upsert(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, e)
	}
	return models.Evaluation{}, errors.New("UpsertFunc not implemented")
}

func (m *MockEvaluationRepository) Get(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, storeID, evaluatorID)
	}
	return models.Evaluation{}, errors.New("GetFunc not implemented")
}

func (m *MockEvaluationRepository) ListByStore(ctx context.Context, storeID string) ([]models.Evaluation, error) {
	if m.ListByStoreFunc != nil {
		return m.ListByStoreFunc(ctx, storeID)
	}
	return nil, errors.New("ListByStoreFunc not implemented")
}

func (m *MockEvaluationRepository) Delete(ctx context.Context, storeID, evaluatorID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, storeID, evaluatorID)
	}
	return errors.New("DeleteFunc not implemented")
}

func (m *MockEvaluationRepository) DeleteAllForStore(ctx context.Context, storeID string) (int64, error) {
	if m.DeleteAllForStoreFunc != nil {
		return m.DeleteAllForStoreFunc(ctx, storeID)
	}
	return 0, errors.New("DeleteAllForStoreFunc not implemented")
}

// MockReportRepository is a mock implementation of the ReportRepository
// interface.
type MockReportRepository struct {
	CreateFunc            func(ctx context.Context, report models.Report) (models.Report, error)
	ListByStoreFunc       func(ctx context.Context, storeID string) ([]models.Report, error)
	DeleteAllForStoreFunc func(ctx context.Context, storeID string) (int64, error)
}

func (m *MockReportRepository) Create(ctx context.Context, report models.Report) (models.Report, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}
	return models.Report{}, errors.New("CreateFunc not implemented")
}

func (m *MockReportRepository) ListByStore(ctx context.Context, storeID string) ([]models.Report, error) {
	if m.ListByStoreFunc != nil {
		return m.ListByStoreFunc(ctx, storeID)
	}
	return nil, errors.New("ListByStoreFunc not implemented")
}

func (m *MockReportRepository) DeleteAllForStore(ctx context.Context, storeID string) (int64, error) {
	if m.DeleteAllForStoreFunc != nil {
		return m.DeleteAllForStoreFunc(ctx, storeID)
	}
	return 0, errors.New("DeleteAllForStoreFunc not implemented")
}

// MockLocker is a mock implementation of the Locker interface.
type MockLocker struct {
	LockFunc func(ctx context.Context, key string) (func(), error)
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, key)
	}
	return func() {}, nil
}
