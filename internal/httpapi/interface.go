package httpapi

import (
	"context"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service"
)

// AuditService is the subset of the audit service the REST API exposes.
type AuditService interface {
	CreateStore(ctx context.Context, in service.CreateStoreInput) (models.Store, error)
	GetStore(ctx context.Context, storeID string) (models.Store, error)
	ListStores(ctx context.Context) ([]models.Store, error)
	DeleteStore(ctx context.Context, storeID string) error
	SubmitEvaluation(ctx context.Context, in service.SubmitEvaluationInput) (service.SubmitResult, error)
	GetEvaluation(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error)
	RetractEvaluation(ctx context.Context, storeID, evaluatorID string) (models.StoreSummary, error)
	GetStoreSummary(ctx context.Context, storeID string) (models.StoreSummary, error)
	GetRankingView(ctx context.Context, storeID string) (ranking.View, error)
	ListRanked(ctx context.Context, q service.RankQuery) ([]ranking.Entry, error)
	GetInsights(ctx context.Context) (service.Insights, error)
	ReportEvaluation(ctx context.Context, in service.ReportInput) (models.Report, error)
	ListReports(ctx context.Context, storeID string) ([]models.Report, error)
}
