package service

import (
	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
)

type CreateStoreInput struct {
	Name     string
	City     string
	Category string
}

type SubmitEvaluationInput struct {
	StoreID     string
	EvaluatorID string
	Answers     map[int]int
	Comment     string
}

// SubmitResult is the persisted evaluation and the store state after the
// recompute it triggered.
type SubmitResult struct {
	Evaluation models.Evaluation
	Summary    models.StoreSummary
	Ranking    ranking.View
}

type RankQuery struct {
	// StoreIDs restricts the ranking to these stores. Empty means all.
	StoreIDs     []string
	ReviewedOnly bool
	// Limit caps the number of entries returned. 0 means no limit.
	Limit int
}

type ReportInput struct {
	StoreID     string
	EvaluatorID string
	ReportedBy  string
	Reason      string
}

// GroupAverage is the evaluation-weighted average of a set of stores that
// share a city or category.
type GroupAverage struct {
	Key         string
	Average     float64
	Evaluations int
	Stores      int
}

type Insights struct {
	StoreCount       int
	TotalEvaluations int
	// GlobalAverage weights each store's average by its evaluation count.
	GlobalAverage  float64
	ApprovedStores int
	CriticalStores int
	TopCities      []GroupAverage
	TopCategories  []GroupAverage
}
