package ranking

import (
	"testing"

	"tenderec/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	url   string
	score float64
}

func itemKey(i item) string    { return i.url }
func itemScore(i item) float64 { return i.score }

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.url
	}
	return out
}

func TestRerank_Example(t *testing.T) {
	items := []item{{"A", 0.80}, {"B", 0.75}, {"C", 0.60}}
	opinions := map[string]models.Opinion{
		"A": models.NotRelevant,
		"C": models.Relevant,
	}

	ranked := Rank(items, itemKey, itemScore, opinions, DefaultAdjustments())
	require.Len(t, ranked, 3)
	assert.Equal(t, "B", ranked[0].Item.url)
	assert.Equal(t, "C", ranked[1].Item.url)
	assert.Equal(t, "A", ranked[2].Item.url)
	assert.InDelta(t, 0.75, ranked[0].Adjusted, 1e-9)
	assert.InDelta(t, 0.70, ranked[1].Adjusted, 1e-9)
	assert.InDelta(t, 0.50, ranked[2].Adjusted, 1e-9)
	assert.InDelta(t, 0.80, ranked[2].Base, 1e-9)
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	items := []item{{"A", 0.80}, {"B", 0.75}, {"C", 0.60}}
	original := append([]item(nil), items...)
	opinions := map[string]models.Opinion{"A": models.NotRelevant}

	first := Rerank(items, itemKey, itemScore, opinions, DefaultAdjustments())
	second := Rerank(items, itemKey, itemScore, opinions, DefaultAdjustments())

	assert.Equal(t, original, items)
	assert.Equal(t, names(first), names(second))
}

func TestRerank_NoOpinionKeepsServerOrder(t *testing.T) {
	items := []item{{"A", 0.9}, {"B", 0.5}, {"C", 0.1}}
	opinions := map[string]models.Opinion{"B": models.NoOpinion}

	out := Rerank(items, itemKey, itemScore, opinions, DefaultAdjustments())
	assert.Equal(t, []string{"A", "B", "C"}, names(out))
}

func TestRerank_Empty(t *testing.T) {
	assert.Empty(t, Rerank(nil, itemKey, itemScore, nil, DefaultAdjustments()))
}

func TestAdjustments_For(t *testing.T) {
	adj := Adjustments{Relevant: 0.2, NotRelevant: -0.5}
	assert.Equal(t, 0.2, adj.For(models.Relevant))
	assert.Equal(t, -0.5, adj.For(models.NotRelevant))
	assert.Equal(t, 0.0, adj.For(models.NoOpinion))
}

func TestRecommendations_UsesMatchLevels(t *testing.T) {
	items := []models.TenderRecommendation{
		{TenderName: "partial", NameMatch: models.PartialMatch, IndustryMatch: models.PartialMatch},
		{TenderName: "perfect", NameMatch: models.PerfectMatch, IndustryMatch: models.PerfectMatch},
		{TenderName: "unknown", NameMatch: models.DontKnow, IndustryMatch: models.DontKnow},
	}
	opinions := map[string]models.Opinion{"perfect": models.NotRelevant}

	ranked := Recommendations(items, opinions, DefaultAdjustments())
	require.Len(t, ranked, 3)
	assert.Equal(t, "perfect", ranked[0].Item.TenderName)
	assert.InDelta(t, 0.70, ranked[0].Adjusted, 1e-9)
	assert.Equal(t, "partial", ranked[1].Item.TenderName)
	assert.Equal(t, "unknown", ranked[2].Item.TenderName)
	assert.Equal(t, models.PerfectMatch, items[1].NameMatch)
}
