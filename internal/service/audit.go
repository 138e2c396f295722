package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/scoring"
)

const (
	defaultStorageTimeout = 2 * time.Second
	rankFetchConcurrency  = 8
)

// AuditService is the entry point for store inspections: it scores and
// stores evaluations, keeps store summaries reconciled, and serves the
// derived rankings.
type AuditService struct {
	stores      StoreRepository
	evaluations EvaluationRepository
	reports     ReportRepository
	engine      *scoring.Engine
	aggregator  *Aggregator
	coordinator *Coordinator
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type Option func(*AuditService)

// WithLocker adds cross-process serialization of summary recomputes.
func WithLocker(l Locker) Option {
	return func(s *AuditService) { s.coordinator.locker = l }
}

// WithStorageTimeout bounds every individual storage call.
func WithStorageTimeout(d time.Duration) Option {
	return func(s *AuditService) {
		if d > 0 {
			s.timeout = d
			s.aggregator.timeout = d
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *AuditService) {
		s.now = now
		s.aggregator.now = now
	}
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(repos Repositories, engine *scoring.Engine, logger *zap.Logger, opts ...Option) *AuditService {
	if repos.Stores == nil || repos.Evaluations == nil || repos.Reports == nil {
		panic("storage must not be nil")
	}
	if engine == nil {
		panic("scoring engine must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}

	agg := NewAggregator(repos.Stores, repos.Evaluations, defaultStorageTimeout, logger)
	s := &AuditService{
		stores:      repos.Stores,
		evaluations: repos.Evaluations,
		reports:     repos.Reports,
		engine:      engine,
		aggregator:  agg,
		coordinator: NewCoordinator(agg.Recompute, nil, logger),
		timeout:     defaultStorageTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.Named("audit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuditService) dbCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// CreateStore registers a store with an empty summary.
func (s *AuditService) CreateStore(ctx context.Context, in CreateStoreInput) (models.Store, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Store{}, fmt.Errorf("%w: store name is required", ErrInvalidInput)
	}

	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	store, err := s.stores.Create(dbCtx, models.Store{
		ID:        uuid.NewString(),
		Name:      name,
		City:      strings.TrimSpace(in.City),
		Category:  strings.TrimSpace(in.Category),
		CreatedAt: s.now(),
	})
	if err != nil {
		return models.Store{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("store created", zap.String("store_id", store.ID), zap.String("name", store.Name))
	return store, nil
}

func (s *AuditService) GetStore(ctx context.Context, storeID string) (models.Store, error) {
	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	store, err := s.stores.Get(dbCtx, storeID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	if err != nil {
		return models.Store{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return store, nil
}

// ListStores returns every store, newest first.
func (s *AuditService) ListStores(ctx context.Context) ([]models.Store, error) {
	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	stores, err := s.stores.List(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return stores, nil
}

// DeleteStore removes a store after all of its evaluations and reports.
// It runs under the store's recompute slot so no recompute interleaves.
func (s *AuditService) DeleteStore(ctx context.Context, storeID string) error {
	return s.coordinator.WithStoreLock(ctx, storeID, func(ctx context.Context) error {
		if _, err := s.GetStore(ctx, storeID); err != nil {
			return err
		}

		dbCtx, cancel := s.dbCtx(ctx)
		removed, err := s.evaluations.DeleteAllForStore(dbCtx, storeID)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: delete evaluations: %v", ErrStorageFailure, err)
		}

		dbCtx, cancel = s.dbCtx(ctx)
		_, err = s.reports.DeleteAllForStore(dbCtx, storeID)
		cancel()
		if err != nil {
			s.logger.Warn("delete reports failed", zap.String("store_id", storeID), zap.Error(err))
			return s.restoreSummary(ctx, storeID, fmt.Errorf("%w: delete reports: %v", ErrStorageFailure, err))
		}

		dbCtx, cancel = s.dbCtx(ctx)
		err = s.stores.Delete(dbCtx, storeID)
		cancel()
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("store row survived cascade",
				zap.String("store_id", storeID),
				zap.Int64("evaluations_removed", removed),
				zap.Error(err))
			return s.restoreSummary(ctx, storeID, fmt.Errorf("%w: delete store: %v", ErrStorageFailure, err))
		}

		s.logger.Info("store deleted", zap.String("store_id", storeID), zap.Int64("evaluations_removed", removed))
		return nil
	})
}

// restoreSummary brings a store that survived a partial cascade back in
// line with its remaining evaluations, then returns cause.
func (s *AuditService) restoreSummary(ctx context.Context, storeID string, cause error) error {
	if _, err := s.aggregator.Recompute(ctx, storeID); err != nil {
		s.logger.Error("recompute after partial delete failed", zap.String("store_id", storeID), zap.Error(err))
	}
	return cause
}

// SubmitEvaluation scores answers, stores them as the evaluator's
// evaluation of the store (replacing any earlier one) and reconciles the
// store summary.
//
// Scoring errors wrap ErrInvalidInput and nothing is stored. If the
// evaluation was stored but the summary could not be recomputed, the
// returned result holds the evaluation and the error wraps
// ErrAggregationUnavailable.
func (s *AuditService) SubmitEvaluation(ctx context.Context, in SubmitEvaluationInput) (SubmitResult, error) {
	if err := requireIDs(in.StoreID, in.EvaluatorID); err != nil {
		return SubmitResult{}, err
	}

	scored, err := s.engine.Score(in.Answers)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	answers := make(map[int]int, len(in.Answers))
	for q, v := range in.Answers {
		answers[q] = v
	}

	// The existence check and the write share the store slot with
	// DeleteStore, so a delete either removes this evaluation or runs first.
	var saved models.Evaluation
	err = s.coordinator.WithStoreLock(ctx, in.StoreID, func(ctx context.Context) error {
		if _, err := s.GetStore(ctx, in.StoreID); err != nil {
			return err
		}

		dbCtx, cancel := s.dbCtx(ctx)
		defer cancel()
		stored, err := s.evaluations.Upsert(dbCtx, models.Evaluation{
			StoreID:                 in.StoreID,
			EvaluatorID:             in.EvaluatorID,
			Answers:                 answers,
			Comment:                 strings.TrimSpace(in.Comment),
			AverageRating:           scored.Average,
			CriticalFail:            scored.CriticalFail,
			FailedCriticalQuestions: scored.FailedQuestions,
			CreatedAt:               now,
			UpdatedAt:               now,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		saved = stored
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.logger.Info("evaluation stored",
		zap.String("store_id", in.StoreID),
		zap.String("evaluator_id", in.EvaluatorID),
		zap.Float64("average", saved.AverageRating),
		zap.Bool("critical_fail", saved.CriticalFail))

	result := SubmitResult{Evaluation: saved}
	summary, err := s.coordinator.Reconcile(ctx, in.StoreID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			// Deleted after the write; the cascade took the evaluation with it.
			return SubmitResult{}, err
		}
		s.logger.Warn("summary not reconciled after submit",
			zap.String("store_id", in.StoreID),
			zap.Error(err))
		return result, aggregationError(err)
	}

	result.Summary = summary
	result.Ranking = ranking.Classify(summary)
	return result, nil
}

func (s *AuditService) GetEvaluation(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
	if err := requireIDs(storeID, evaluatorID); err != nil {
		return models.Evaluation{}, err
	}

	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	e, err := s.evaluations.Get(dbCtx, storeID, evaluatorID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Evaluation{}, fmt.Errorf("%w: store %s evaluator %s", ErrEvaluationNotFound, storeID, evaluatorID)
	}
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return e, nil
}

// RetractEvaluation deletes the evaluator's evaluation of a store and
// returns the reconciled summary.
func (s *AuditService) RetractEvaluation(ctx context.Context, storeID, evaluatorID string) (models.StoreSummary, error) {
	if err := requireIDs(storeID, evaluatorID); err != nil {
		return models.StoreSummary{}, err
	}

	dbCtx, cancel := s.dbCtx(ctx)
	err := s.evaluations.Delete(dbCtx, storeID, evaluatorID)
	cancel()
	if errors.Is(err, repository.ErrNotFound) {
		return models.StoreSummary{}, fmt.Errorf("%w: store %s evaluator %s", ErrEvaluationNotFound, storeID, evaluatorID)
	}
	if err != nil {
		return models.StoreSummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("evaluation retracted", zap.String("store_id", storeID), zap.String("evaluator_id", evaluatorID))

	summary, err := s.coordinator.Reconcile(ctx, storeID)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return models.StoreSummary{}, err
		}
		return models.StoreSummary{}, aggregationError(err)
	}
	return summary, nil
}

func (s *AuditService) GetStoreSummary(ctx context.Context, storeID string) (models.StoreSummary, error) {
	store, err := s.GetStore(ctx, storeID)
	if err != nil {
		return models.StoreSummary{}, err
	}
	return store.Summary, nil
}

// GetRankingView classifies the store's current summary.
func (s *AuditService) GetRankingView(ctx context.Context, storeID string) (ranking.View, error) {
	summary, err := s.GetStoreSummary(ctx, storeID)
	if err != nil {
		return ranking.View{}, err
	}
	return ranking.Classify(summary), nil
}

// ListRanked ranks the requested stores, or all stores when q.StoreIDs is
// empty.
func (s *AuditService) ListRanked(ctx context.Context, q RankQuery) ([]ranking.Entry, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	var (
		stores []models.Store
		err    error
	)
	if len(q.StoreIDs) == 0 {
		stores, err = s.ListStores(ctx)
	} else {
		stores, err = s.getStores(ctx, q.StoreIDs)
	}
	if err != nil {
		return nil, err
	}

	if q.ReviewedOnly {
		reviewed := make([]models.Store, 0, len(stores))
		for _, st := range stores {
			if st.Summary.RatingCount > 0 {
				reviewed = append(reviewed, st)
			}
		}
		stores = reviewed
	}

	entries := ranking.Rank(stores)
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

func (s *AuditService) getStores(ctx context.Context, ids []string) ([]models.Store, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	out := make([]models.Store, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rankFetchConcurrency)
	for i, id := range unique {
		g.Go(func() error {
			st, err := s.GetStore(gctx, id)
			if err != nil {
				return err
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportEvaluation flags an existing evaluation for moderation.
func (s *AuditService) ReportEvaluation(ctx context.Context, in ReportInput) (models.Report, error) {
	if err := requireIDs(in.StoreID, in.EvaluatorID); err != nil {
		return models.Report{}, err
	}
	if strings.TrimSpace(in.ReportedBy) == "" {
		return models.Report{}, fmt.Errorf("%w: reporter id is required", ErrInvalidInput)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return models.Report{}, fmt.Errorf("%w: a reason is required", ErrInvalidInput)
	}

	if _, err := s.GetEvaluation(ctx, in.StoreID, in.EvaluatorID); err != nil {
		return models.Report{}, err
	}

	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	report, err := s.reports.Create(dbCtx, models.Report{
		ID:          uuid.NewString(),
		StoreID:     in.StoreID,
		EvaluatorID: in.EvaluatorID,
		ReportedBy:  in.ReportedBy,
		Reason:      reason,
		Status:      models.ReportStatusOpen,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("evaluation reported",
		zap.String("report_id", report.ID),
		zap.String("store_id", in.StoreID),
		zap.String("evaluator_id", in.EvaluatorID))
	return report, nil
}

func (s *AuditService) ListReports(ctx context.Context, storeID string) ([]models.Report, error) {
	if _, err := s.GetStore(ctx, storeID); err != nil {
		return nil, err
	}

	dbCtx, cancel := s.dbCtx(ctx)
	defer cancel()

	reports, err := s.reports.ListByStore(dbCtx, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return reports, nil
}

func requireIDs(storeID, evaluatorID string) error {
	if strings.TrimSpace(storeID) == "" {
		return fmt.Errorf("%w: store id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(evaluatorID) == "" {
		return fmt.Errorf("%w: evaluator id is required", ErrInvalidInput)
	}
	return nil
}

func aggregationError(err error) error {
	if errors.Is(err, ErrAggregationUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAggregationUnavailable, err)
}
