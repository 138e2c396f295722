package grpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/store-audit/api/v1"
	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/service"
	"github.com/godilite/store-audit/pkg/grpc/server"
)

const defaultGRPCTimeout = 10 * time.Second

type GRPCHandlers struct {
	pb.UnimplementedStoreAuditServer
	audit   AuditService
	logger  *zap.Logger
	timeout time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(audit AuditService, logger *zap.Logger, timeout time.Duration) *GRPCHandlers {
	if audit == nil {
		panic("nil AuditService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	return &GRPCHandlers{
		audit:   audit,
		logger:  logger.Named("grpc-handler"),
		timeout: timeout,
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStoreNotFound), errors.Is(err, service.ErrEvaluationNotFound):
		s.logger.Info("not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrAggregationUnavailable):
		s.logger.Warn("aggregation unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "store summary is temporarily unavailable, try again")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed", op)
	}
}

func evaluatorID(ctx context.Context) (string, error) {
	id, ok := server.IdentityFromContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "%s metadata is required", pb.EvaluatorMetadataKey)
	}
	return id, nil
}

func (s *GRPCHandlers) CreateStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in createStoreRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	store, err := s.audit.CreateStore(ctx, service.CreateStoreInput{Name: in.Name, City: in.City, Category: in.Category})
	if err != nil {
		return nil, s.handleError(ctx, "CreateStore", err)
	}
	return toStruct(map[string]any{"store": storeToMap(store)})
}

func (s *GRPCHandlers) GetStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	store, err := s.audit.GetStore(ctx, in.StoreID)
	if err != nil {
		return nil, s.handleError(ctx, "GetStore", err)
	}
	return toStruct(map[string]any{"store": storeToMap(store)})
}

func (s *GRPCHandlers) ListStores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stores, err := s.audit.ListStores(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "ListStores", err)
	}
	return toStruct(map[string]any{"stores": listOf(stores, storeToMap)})
}

func (s *GRPCHandlers) DeleteStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.audit.DeleteStore(ctx, in.StoreID); err != nil {
		return nil, s.handleError(ctx, "DeleteStore", err)
	}
	return toStruct(map[string]any{"deleted": true})
}

func (s *GRPCHandlers) SubmitEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	evaluator, err := evaluatorID(ctx)
	if err != nil {
		return nil, err
	}
	var in submitEvaluationRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}
	answers, err := parseAnswers(in.Answers)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.audit.SubmitEvaluation(ctx, service.SubmitEvaluationInput{
		StoreID:     in.StoreID,
		EvaluatorID: evaluator,
		Answers:     answers,
		Comment:     in.Comment,
	})
	if err != nil {
		return nil, s.handleError(ctx, "SubmitEvaluation", err)
	}

	return toStruct(map[string]any{
		"evaluation": evaluationToMap(res.Evaluation),
		"summary":    summaryToMap(res.Summary),
		"ranking":    viewToMap(res.Ranking),
	})
}

func (s *GRPCHandlers) GetEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	evaluator, err := evaluatorID(ctx)
	if err != nil {
		return nil, err
	}
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	e, err := s.audit.GetEvaluation(ctx, in.StoreID, evaluator)
	if err != nil {
		return nil, s.handleError(ctx, "GetEvaluation", err)
	}
	return toStruct(map[string]any{"evaluation": evaluationToMap(e)})
}

func (s *GRPCHandlers) RetractEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	evaluator, err := evaluatorID(ctx)
	if err != nil {
		return nil, err
	}
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.audit.RetractEvaluation(ctx, in.StoreID, evaluator)
	if err != nil {
		return nil, s.handleError(ctx, "RetractEvaluation", err)
	}
	return toStruct(map[string]any{
		"summary": summaryToMap(summary),
		"ranking": viewToMap(ranking.Classify(summary)),
	})
}

func (s *GRPCHandlers) GetStoreSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.audit.GetStoreSummary(ctx, in.StoreID)
	if err != nil {
		return nil, s.handleError(ctx, "GetStoreSummary", err)
	}
	return toStruct(map[string]any{"summary": summaryToMap(summary)})
}

func (s *GRPCHandlers) GetRankingView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	view, err := s.audit.GetRankingView(ctx, in.StoreID)
	if err != nil {
		return nil, s.handleError(ctx, "GetRankingView", err)
	}
	return toStruct(map[string]any{"ranking": viewToMap(view)})
}

func (s *GRPCHandlers) ListRanked(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listRankedRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	limit, err := limitFromFloat(in.Limit)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.audit.ListRanked(ctx, service.RankQuery{
		StoreIDs:     in.StoreIDs,
		ReviewedOnly: in.ReviewedOnly,
		Limit:        limit,
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListRanked", err)
	}

	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = entryToMap(i+1, e)
	}
	return toStruct(map[string]any{"entries": out})
}

func (s *GRPCHandlers) GetInsights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	in, err := s.audit.GetInsights(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetInsights", err)
	}
	return toStruct(map[string]any{"insights": insightsToMap(in)})
}

func (s *GRPCHandlers) ReportEvaluation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	reporter, err := evaluatorID(ctx)
	if err != nil {
		return nil, err
	}
	var in reportEvaluationRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.audit.ReportEvaluation(ctx, service.ReportInput{
		StoreID:     in.StoreID,
		EvaluatorID: in.EvaluatorID,
		ReportedBy:  reporter,
		Reason:      in.Reason,
	})
	if err != nil {
		return nil, s.handleError(ctx, "ReportEvaluation", err)
	}
	return toStruct(map[string]any{"report": reportToMap(report)})
}

func (s *GRPCHandlers) ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in storeRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := requireStoreID(in.StoreID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reports, err := s.audit.ListReports(ctx, in.StoreID)
	if err != nil {
		return nil, s.handleError(ctx, "ListReports", err)
	}
	return toStruct(map[string]any{"reports": listOf(reports, reportToMap)})
}

var _ pb.StoreAuditServer = (*GRPCHandlers)(nil)
var _ AuditService = (*service.CachedAuditService)(nil)
