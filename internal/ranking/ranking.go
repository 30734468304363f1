// Package ranking reorders fetched recommendations using local feedback.
package ranking

import (
	"sort"

	"tenderec/internal/common/config"
	"tenderec/internal/models"
)

// Adjustments are added to an item's base score according to its opinion.
type Adjustments struct {
	Relevant    float64
	NotRelevant float64
}

func DefaultAdjustments() Adjustments {
	return Adjustments{Relevant: 0.1, NotRelevant: -0.3}
}

func AdjustmentsFromConfig(cfg config.RankingConfig) Adjustments {
	return Adjustments{Relevant: cfg.RelevantBoost, NotRelevant: cfg.NotRelevantPenalty}
}

func (a Adjustments) For(o models.Opinion) float64 {
	switch o {
	case models.Relevant:
		return a.Relevant
	case models.NotRelevant:
		return a.NotRelevant
	default:
		return 0
	}
}

// Scored pairs an item with its base and adjusted scores.
type Scored[T any] struct {
	Item     T
	Base     float64
	Adjusted float64
}

// Rank returns items ordered by adjusted score, highest first. The input slice
// and its elements are left untouched.
func Rank[T any](items []T, key func(T) string, score func(T) float64, opinions map[string]models.Opinion, adj Adjustments) []Scored[T] {
	out := make([]Scored[T], len(items))
	for i, item := range items {
		base := score(item)
		out[i] = Scored[T]{
			Item:     item,
			Base:     base,
			Adjusted: base + adj.For(opinions[key(item)]),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Adjusted > out[j].Adjusted
	})
	return out
}

// Rerank is Rank without the scores.
func Rerank[T any](items []T, key func(T) string, score func(T) float64, opinions map[string]models.Opinion, adj Adjustments) []T {
	ranked := Rank(items, key, score, opinions, adj)
	out := make([]T, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item
	}
	return out
}

// Recommendations re-ranks tender recommendations by their match-level score.
func Recommendations(items []models.TenderRecommendation, opinions map[string]models.Opinion, adj Adjustments) []Scored[models.TenderRecommendation] {
	return Rank(items, models.TenderRecommendation.Key, models.TenderRecommendation.Score, opinions, adj)
}
