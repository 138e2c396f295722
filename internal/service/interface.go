package service

import (
	"context"
	"time"

	"github.com/godilite/store-audit/internal/repository/models"
)

// StoreRepository persists stores and their summaries.
type StoreRepository interface {
	Create(ctx context.Context, store models.Store) (models.Store, error)
	Get(ctx context.Context, id string) (models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	Delete(ctx context.Context, id string) error
	UpdateSummary(ctx context.Context, summary models.StoreSummary) error
}

// EvaluationRepository persists one evaluation per (store, evaluator).
type EvaluationRepository interface {
	Upsert(ctx context.Context, e models.Evaluation) (models.Evaluation, error)
	Get(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error)
	ListByStore(ctx context.Context, storeID string) ([]models.Evaluation, error)
	Delete(ctx context.Context, storeID, evaluatorID string) error
	DeleteAllForStore(ctx context.Context, storeID string) (int64, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report models.Report) (models.Report, error)
	ListByStore(ctx context.Context, storeID string) ([]models.Report, error)
	DeleteAllForStore(ctx context.Context, storeID string) (int64, error)
}

// Repositories bundles the storage the audit service depends on.
type Repositories struct {
	Stores      StoreRepository
	Evaluations EvaluationRepository
	Reports     ReportRepository
}

// Locker provides mutual exclusion across processes. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Cacher is a read cache whose writes are fenced by a per-key generation.
// Invalidate bumps the generation, so a value fetched before the bump can
// no longer be stored by SetIfGeneration.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Generation(ctx context.Context, key string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, gen int64, value any, expiration time.Duration) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}
