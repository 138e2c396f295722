// Package ranking derives a store's status label and composite ranking
// score from its summary. Every consumer that displays or exports a
// status goes through Classify so the critical override is applied the
// same way everywhere.
package ranking

import (
	"math"
	"sort"

	"github.com/godilite/store-audit/internal/repository/models"
)

const (
	ApprovedThreshold  = 4.2
	AttentionThreshold = 3.2

	// VolumeWeight scales the log10 evaluation-count bonus.
	VolumeWeight = 0.25
	// CriticalPenalty is subtracted from the score of any store with at
	// least one critical failure.
	CriticalPenalty = 0.35
)

type Status string

const (
	StatusNoReviews Status = "NO_REVIEWS"
	StatusCritical  Status = "CRITICAL"
	StatusApproved  Status = "APPROVED"
	StatusAttention Status = "ATTENTION"
)

var labels = map[Status]string{
	StatusNoReviews: "No reviews",
	StatusCritical:  "Critical",
	StatusApproved:  "Approved",
	StatusAttention: "Needs attention",
}

// Label returns the human readable name of s.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) String() string { return string(s) }

// View is the derived, never persisted, ranking information of a store.
type View struct {
	Status Status
	Score  float64
}

func Classify(summary models.StoreSummary) View {
	return View{
		Status: StatusOf(summary),
		Score:  Score(summary),
	}
}

func StatusOf(summary models.StoreSummary) Status {
	switch {
	case summary.RatingCount == 0:
		return StatusNoReviews
	case summary.CriticalCount > 0:
		return StatusCritical
	case summary.RatingAvg >= ApprovedThreshold:
		return StatusApproved
	case summary.RatingAvg >= AttentionThreshold:
		return StatusAttention
	default:
		return StatusCritical
	}
}

// Score is ratingAvg + log10(ratingCount+1)*VolumeWeight, minus
// CriticalPenalty when the store has critical failures.
func Score(summary models.StoreSummary) float64 {
	score := summary.RatingAvg + math.Log10(float64(summary.RatingCount)+1)*VolumeWeight
	if summary.CriticalCount > 0 {
		score -= CriticalPenalty
	}
	return score
}

// Entry is a store with its classification.
type Entry struct {
	Store models.Store
	View
}

// Rank classifies stores and orders them by score descending. Equal
// scores are ordered by store id ascending.
func Rank(stores []models.Store) []Entry {
	out := make([]Entry, len(stores))
	for i, s := range stores {
		out[i] = Entry{Store: s, View: Classify(s.Summary)}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Store.ID < out[j].Store.ID
	})
	return out
}
