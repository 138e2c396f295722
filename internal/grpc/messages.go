package grpc

import (
	"math"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service"
)

type storeRequest struct {
	StoreID string `mapstructure:"store_id"`
}

type createStoreRequest struct {
	Name     string `mapstructure:"name"`
	City     string `mapstructure:"city"`
	Category string `mapstructure:"category"`
}

type submitEvaluationRequest struct {
	StoreID string             `mapstructure:"store_id"`
	Answers map[string]float64 `mapstructure:"answers"`
	Comment string             `mapstructure:"comment"`
}

type listRankedRequest struct {
	StoreIDs     []string `mapstructure:"store_ids"`
	ReviewedOnly bool     `mapstructure:"reviewed_only"`
	Limit        float64  `mapstructure:"limit"`
}

type reportEvaluationRequest struct {
	StoreID     string `mapstructure:"store_id"`
	EvaluatorID string `mapstructure:"evaluator_id"`
	Reason      string `mapstructure:"reason"`
}

// decode maps the request struct onto out. Unknown fields are rejected.
func decode(req *structpb.Struct, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return status.Errorf(codes.Internal, "request decoder: %v", err)
	}
	if err := dec.Decode(req.AsMap()); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func requireStoreID(id string) error {
	if id == "" {
		return status.Error(codes.InvalidArgument, "store_id is required")
	}
	return nil
}

// parseAnswers converts JSON-style answers ("7": 4) into question scores.
func parseAnswers(raw map[string]float64) (map[int]int, error) {
	out := make(map[int]int, len(raw))
	for k, v := range raw {
		q, err := strconv.Atoi(k)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "answers: question %q is not a number", k)
		}
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return nil, status.Errorf(codes.InvalidArgument, "answers: question %d has non-integer score %v", q, v)
		}
		out[q] = int(v)
	}
	return out, nil
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func intsToList(in []int) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func storeToMap(s models.Store) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"city":       s.City,
		"category":   s.Category,
		"created_at": formatTime(s.CreatedAt),
		"summary":    summaryToMap(s.Summary),
		"ranking":    viewToMap(ranking.Classify(s.Summary)),
	}
}

func summaryToMap(s models.StoreSummary) map[string]any {
	return map[string]any{
		"store_id":       s.StoreID,
		"rating_avg":     s.RatingAvg,
		"rating_count":   s.RatingCount,
		"critical_count": s.CriticalCount,
		"updated_at":     formatTime(s.UpdatedAt),
	}
}

func viewToMap(v ranking.View) map[string]any {
	return map[string]any{
		"status": v.Status.String(),
		"label":  v.Status.Label(),
		"score":  v.Score,
	}
}

func evaluationToMap(e models.Evaluation) map[string]any {
	answers := make(map[string]any, len(e.Answers))
	for q, v := range e.Answers {
		answers[strconv.Itoa(q)] = v
	}
	return map[string]any{
		"store_id":                  e.StoreID,
		"evaluator_id":              e.EvaluatorID,
		"answers":                   answers,
		"comment":                   e.Comment,
		"average_rating":            e.AverageRating,
		"critical_fail":             e.CriticalFail,
		"failed_critical_questions": intsToList(e.FailedCriticalQuestions),
		"created_at":                formatTime(e.CreatedAt),
		"updated_at":                formatTime(e.UpdatedAt),
	}
}

func reportToMap(r models.Report) map[string]any {
	return map[string]any{
		"id":           r.ID,
		"store_id":     r.StoreID,
		"evaluator_id": r.EvaluatorID,
		"reported_by":  r.ReportedBy,
		"reason":       r.Reason,
		"status":       r.Status,
		"created_at":   formatTime(r.CreatedAt),
	}
}

func entryToMap(rank int, e ranking.Entry) map[string]any {
	m := storeToMap(e.Store)
	m["rank"] = rank
	m["ranking"] = viewToMap(e.View)
	return m
}

func groupsToList(groups []service.GroupAverage) []any {
	out := make([]any, len(groups))
	for i, g := range groups {
		out[i] = map[string]any{
			"key":         g.Key,
			"average":     g.Average,
			"evaluations": g.Evaluations,
			"stores":      g.Stores,
		}
	}
	return out
}

func insightsToMap(in service.Insights) map[string]any {
	return map[string]any{
		"store_count":       in.StoreCount,
		"total_evaluations": in.TotalEvaluations,
		"global_average":    in.GlobalAverage,
		"approved_stores":   in.ApprovedStores,
		"critical_stores":   in.CriticalStores,
		"top_cities":        groupsToList(in.TopCities),
		"top_categories":    groupsToList(in.TopCategories),
	}
}

func listOf[T any](items []T, conv func(T) map[string]any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = conv(it)
	}
	return out
}

func limitFromFloat(v float64) (int, error) {
	if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "limit must be a non-negative integer, got %v", v)
	}
	return int(v), nil
}
