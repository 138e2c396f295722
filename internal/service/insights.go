package service

import (
	"context"
	"sort"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/repository/models"
)

const topGroups = 5

// GetInsights summarizes the whole store network.
func (s *AuditService) GetInsights(ctx context.Context) (Insights, error) {
	stores, err := s.ListStores(ctx)
	if err != nil {
		return Insights{}, err
	}
	return buildInsights(stores), nil
}

func buildInsights(stores []models.Store) Insights {
	in := Insights{
		StoreCount:    len(stores),
		TopCities:     []GroupAverage{},
		TopCategories: []GroupAverage{},
	}

	var weighted float64
	cities := make(map[string]*groupAcc)
	categories := make(map[string]*groupAcc)

	for _, st := range stores {
		sum := st.Summary
		in.TotalEvaluations += sum.RatingCount
		weighted += sum.RatingAvg * float64(sum.RatingCount)

		switch ranking.StatusOf(sum) {
		case ranking.StatusApproved:
			in.ApprovedStores++
		case ranking.StatusCritical:
			in.CriticalStores++
		}

		if sum.RatingCount == 0 {
			continue
		}
		accumulate(cities, st.City, sum)
		accumulate(categories, st.Category, sum)
	}

	if in.TotalEvaluations > 0 {
		in.GlobalAverage = weighted / float64(in.TotalEvaluations)
	}
	in.TopCities = top(cities, topGroups)
	in.TopCategories = top(categories, topGroups)
	return in
}

type groupAcc struct {
	weighted    float64
	evaluations int
	stores      int
}

func accumulate(groups map[string]*groupAcc, key string, sum models.StoreSummary) {
	if key == "" {
		return
	}
	g, ok := groups[key]
	if !ok {
		g = &groupAcc{}
		groups[key] = g
	}
	g.weighted += sum.RatingAvg * float64(sum.RatingCount)
	g.evaluations += sum.RatingCount
	g.stores++
}

// top orders groups by weighted average descending, then key ascending.
func top(groups map[string]*groupAcc, n int) []GroupAverage {
	out := make([]GroupAverage, 0, len(groups))
	for key, g := range groups {
		out = append(out, GroupAverage{
			Key:         key,
			Average:     g.weighted / float64(g.evaluations),
			Evaluations: g.evaluations,
			Stores:      g.stores,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
