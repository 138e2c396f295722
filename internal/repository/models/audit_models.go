package models

import "time"

// Store is an audited retail location together with its current summary.
type Store struct {
	ID        string
	Name      string
	City      string
	Category  string
	Summary   StoreSummary
	CreatedAt time.Time
}

// StoreSummary is the aggregate of every evaluation recorded for a store.
type StoreSummary struct {
	StoreID       string
	RatingAvg     float64
	RatingCount   int
	CriticalCount int
	UpdatedAt     time.Time
}

// Evaluation is one evaluator's complete answer set for one store.
type Evaluation struct {
	StoreID                 string
	EvaluatorID             string
	Answers                 map[int]int
	Comment                 string
	AverageRating           float64
	CriticalFail            bool
	FailedCriticalQuestions []int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

const ReportStatusOpen = "open"

// Report flags a single evaluation for moderation.
type Report struct {
	ID          string
	StoreID     string
	EvaluatorID string
	ReportedBy  string
	Reason      string
	Status      string
	CreatedAt   time.Time
}
