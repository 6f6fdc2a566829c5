package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georepute/visibility-cli/internal/model"
)

func TestAggregateMergesNormalizedDuplicates(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "Best CRM Software", Clicks: 10, Impressions: 100, Position: 4},
		{Query: "  best crm software ", Clicks: 5, Impressions: 300, Position: 8},
		{Query: "crm pricing", Clicks: 2, Impressions: 50, Position: 12},
	}

	out := Aggregate(rows, 0)
	require.Len(t, out, 2)

	// Sorted descending by impressions.
	assert.Equal(t, "best crm software", out[0].Text)
	assert.Equal(t, 15, out[0].Clicks)
	assert.Equal(t, 400, out[0].Impressions)
	assert.InDelta(t, 15.0/400.0, out[0].CTR, 1e-9)
	// Impression-weighted: (4*100 + 8*300) / 400 = 7.
	assert.InDelta(t, 7.0, out[0].AvgPosition, 1e-9)

	assert.Equal(t, "crm pricing", out[1].Text)
}

func TestAggregatePositionFallbackWithoutImpressions(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "zero signal", Clicks: 0, Impressions: 0, Position: 10},
		{Query: "zero signal", Clicks: 0, Impressions: 0, Position: 20},
	}

	out := Aggregate(rows, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Impressions)
	assert.Equal(t, 0.0, out[0].CTR)
	// Arithmetic mean keeps the position signal when impressions are all zero.
	assert.InDelta(t, 15.0, out[0].AvgPosition, 1e-9)
}

func TestAggregateClampsNegativeAndInconsistentRows(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "odd row", Clicks: -5, Impressions: -10, Position: 3},
		{Query: "clicky", Clicks: 30, Impressions: 10, Position: 2},
	}

	out := Aggregate(rows, 0)
	require.Len(t, out, 2)

	byText := map[string]model.AggregatedQuery{}
	for _, q := range out {
		byText[q.Text] = q
	}

	assert.Equal(t, 0, byText["odd row"].Clicks)
	assert.Equal(t, 0, byText["odd row"].Impressions)

	// Impressions lifted to clicks so CTR stays <= 1.
	assert.Equal(t, 30, byText["clicky"].Clicks)
	assert.Equal(t, 30, byText["clicky"].Impressions)
	assert.InDelta(t, 1.0, byText["clicky"].CTR, 1e-9)
}

func TestAggregateSkipsEmptyQueries(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "   ", Clicks: 1, Impressions: 10, Position: 1},
		{Query: "", Clicks: 1, Impressions: 10, Position: 1},
		{Query: "real query", Clicks: 1, Impressions: 10, Position: 1},
	}

	out := Aggregate(rows, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "real query", out[0].Text)
}

func TestAggregateTruncatesToMaxQueries(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "a", Impressions: 300, Position: 1},
		{Query: "b", Impressions: 200, Position: 1},
		{Query: "c", Impressions: 100, Position: 1},
	}

	out := Aggregate(rows, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, "b", out[1].Text)
}

func TestAggregateDeterministicOrderOnTies(t *testing.T) {
	rows := []model.PerformanceRow{
		{Query: "beta", Clicks: 5, Impressions: 100, Position: 2},
		{Query: "alpha", Clicks: 5, Impressions: 100, Position: 2},
	}

	for i := 0; i < 10; i++ {
		out := Aggregate(rows, 0)
		require.Len(t, out, 2)
		assert.Equal(t, "alpha", out[0].Text)
		assert.Equal(t, "beta", out[1].Text)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	out := Aggregate(nil, 10)
	assert.Empty(t, out)
}
