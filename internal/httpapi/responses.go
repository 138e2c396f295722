package httpapi

import (
	"time"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
	"github.com/godilite/store-audit/internal/service"
)

type summaryResponse struct {
	StoreID       string    `json:"store_id"`
	RatingAvg     float64   `json:"rating_avg"`
	RatingCount   int       `json:"rating_count"`
	CriticalCount int       `json:"critical_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type viewResponse struct {
	Status string  `json:"status"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
}

type storeResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	City      string          `json:"city"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	Summary   summaryResponse `json:"summary"`
	Ranking   viewResponse    `json:"ranking"`
}

type rankedStoreResponse struct {
	Rank int `json:"rank"`
	storeResponse
}

type evaluationResponse struct {
	StoreID                 string      `json:"store_id"`
	EvaluatorID             string      `json:"evaluator_id"`
	Answers                 map[int]int `json:"answers"`
	Comment                 string      `json:"comment"`
	AverageRating           float64     `json:"average_rating"`
	CriticalFail            bool        `json:"critical_fail"`
	FailedCriticalQuestions []int       `json:"failed_critical_questions"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}

type reportResponse struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	EvaluatorID string    `json:"evaluator_id"`
	ReportedBy  string    `json:"reported_by"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type groupResponse struct {
	Key         string  `json:"key"`
	Average     float64 `json:"average"`
	Evaluations int     `json:"evaluations"`
	Stores      int     `json:"stores"`
}

type insightsResponse struct {
	StoreCount       int             `json:"store_count"`
	TotalEvaluations int             `json:"total_evaluations"`
	GlobalAverage    float64         `json:"global_average"`
	ApprovedStores   int             `json:"approved_stores"`
	CriticalStores   int             `json:"critical_stores"`
	TopCities        []groupResponse `json:"top_cities"`
	TopCategories    []groupResponse `json:"top_categories"`
}

func newSummaryResponse(s models.StoreSummary) summaryResponse {
	return summaryResponse{
		StoreID:       s.StoreID,
		RatingAvg:     s.RatingAvg,
		RatingCount:   s.RatingCount,
		CriticalCount: s.CriticalCount,
		UpdatedAt:     s.UpdatedAt,
	}
}

func newViewResponse(v ranking.View) viewResponse {
	return viewResponse{Status: v.Status.String(), Label: v.Status.Label(), Score: v.Score}
}

func newStoreResponse(s models.Store, v ranking.View) storeResponse {
	return storeResponse{
		ID:        s.ID,
		Name:      s.Name,
		City:      s.City,
		Category:  s.Category,
		CreatedAt: s.CreatedAt,
		Summary:   newSummaryResponse(s.Summary),
		Ranking:   newViewResponse(v),
	}
}

func newEvaluationResponse(e models.Evaluation) evaluationResponse {
	failed := e.FailedCriticalQuestions
	if failed == nil {
		failed = []int{}
	}
	return evaluationResponse{
		StoreID:                 e.StoreID,
		EvaluatorID:             e.EvaluatorID,
		Answers:                 e.Answers,
		Comment:                 e.Comment,
		AverageRating:           e.AverageRating,
		CriticalFail:            e.CriticalFail,
		FailedCriticalQuestions: failed,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

func newReportResponse(r models.Report) reportResponse {
	return reportResponse(r)
}

func newGroupResponses(groups []service.GroupAverage) []groupResponse {
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = groupResponse(g)
	}
	return out
}

func newInsightsResponse(in service.Insights) insightsResponse {
	return insightsResponse{
		StoreCount:       in.StoreCount,
		TotalEvaluations: in.TotalEvaluations,
		GlobalAverage:    in.GlobalAverage,
		ApprovedStores:   in.ApprovedStores,
		CriticalStores:   in.CriticalStores,
		TopCities:        newGroupResponses(in.TopCities),
		TopCategories:    newGroupResponses(in.TopCategories),
	}
}
