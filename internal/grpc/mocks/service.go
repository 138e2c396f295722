package mocks

import (
	"context"
	"errors"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service"
)

// MockAuditService is a mock implementation of the AuditService interface
// for testing the handler layer.
type MockAuditService struct {
	CreateStoreFunc       func(ctx context.Context, in service.CreateStoreInput) (models.Store, error)
	GetStoreFunc          func(ctx context.Context, storeID string) (models.Store, error)
	ListStoresFunc        func(ctx context.Context) ([]models.Store, error)
	DeleteStoreFunc       func(ctx context.Context, storeID string) error
	SubmitEvaluationFunc  func(ctx context.Context, in service.SubmitEvaluationInput) (service.SubmitResult, error)
	GetEvaluationFunc     func(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error)
	RetractEvaluationFunc func(ctx context.Context, storeID, evaluatorID string) (models.StoreSummary, error)
	GetStoreSummaryFunc   func(ctx context.Context, storeID string) (models.StoreSummary, error)
	GetRankingViewFunc    func(ctx context.Context, storeID string) (ranking.View, error)
	ListRankedFunc        func(ctx context.Context, q service.RankQuery) ([]ranking.Entry, error)
	GetInsightsFunc       func(ctx context.Context) (service.Insights, error)
	ReportEvaluationFunc  func(ctx context.Context, in service.ReportInput) (models.Report, error)
	ListReportsFunc       func(ctx context.Context, storeID string) ([]models.Report, error)
}

func (m *MockAuditService) CreateStore(ctx context.Context, in service.CreateStoreInput) (models.Store, error) {
	if m.CreateStoreFunc != nil {
		return m.CreateStoreFunc(ctx, in)
	}
	return models.Store{}, errors.New("CreateStoreFunc not implemented")
}

func (m *MockAuditService) GetStore(ctx context.Context, storeID string) (models.Store, error) {
	if m.GetStoreFunc != nil {
		return m.GetStoreFunc(ctx, storeID)
	}
	return models.Store{}, errors.New("GetStoreFunc not implemented")
}

func (m *MockAuditService) ListStores(ctx context.Context) ([]models.Store, error) {
	if m.ListStoresFunc != nil {
		return m.ListStoresFunc(ctx)
	}
	return nil, errors.New("ListStoresFunc not implemented")
}

func (m *MockAuditService) DeleteStore(ctx context.Context, storeID string) error {
	if m.DeleteStoreFunc != nil {
		return m.DeleteStoreFunc(ctx, storeID)
	}
	return errors.New("DeleteStoreFunc not implemented")
}

func (m *MockAuditService) SubmitEvaluation(ctx context.Context, in service.SubmitEvaluationInput) (service.SubmitResult, error) {
	if m.SubmitEvaluationFunc != nil {
		return m.SubmitEvaluationFunc(ctx, in)
	}
	return service.SubmitResult{}, errors.New("SubmitEvaluationFunc not implemented")
}

func (m *MockAuditService) GetEvaluation(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
	if m.GetEvaluationFunc != nil {
		return m.GetEvaluationFunc(ctx, storeID, evaluatorID)
	}
	return models.Evaluation{}, errors.New("GetEvaluationFunc not implemented")
}

func (m *MockAuditService) RetractEvaluation(ctx context.Context, storeID, evaluatorID string) (models.StoreSummary, error) {
	if m.RetractEvaluationFunc != nil {
		return m.RetractEvaluationFunc(ctx, storeID, evaluatorID)
	}
	return models.StoreSummary{}, errors.New("RetractEvaluationFunc not implemented")
}

func (m *MockAuditService) GetStoreSummary(ctx context.Context, storeID string) (models.StoreSummary, error) {
	if m.GetStoreSummaryFunc != nil {
		return m.GetStoreSummaryFunc(ctx, storeID)
	}
	return models.StoreSummary{}, errors.New("GetStoreSummaryFunc not implemented")
}

func (m *MockAuditService) GetRankingView(ctx context.Context, storeID string) (ranking.View, error) {
	if m.GetRankingViewFunc != nil {
		return m.GetRankingViewFunc(ctx, storeID)
	}
	return ranking.View{}, errors.New("GetRankingViewFunc not implemented")
}

func (m *MockAuditService) ListRanked(ctx context.Context, q service.RankQuery) ([]ranking.Entry, error) {
	if m.ListRankedFunc != nil {
		return m.ListRankedFunc(ctx, q)
	}
	return nil, errors.New("ListRankedFunc not implemented")
}

func (m *MockAuditService) GetInsights(ctx context.Context) (service.Insights, error) {
	if m.GetInsightsFunc != nil {
		return m.GetInsightsFunc(ctx)
	}
	return service.Insights{}, errors.New("GetInsightsFunc not implemented")
}

func (m *MockAuditService) ReportEvaluation(ctx context.Context, in service.ReportInput) (models.Report, error) {
	if m.ReportEvaluationFunc != nil {
		return m.ReportEvaluationFunc(ctx, in)
	}
	return models.Report{}, errors.New("ReportEvaluationFunc not implemented")
}

func (m *MockAuditService) ListReports(ctx context.Context, storeID string) ([]models.Report, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx, storeID)
	}
	return nil, errors.New("ListReportsFunc not implemented")
}
