package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georepute/visibility-cli/internal/model"
)

func TestComputeBlindSpotsZeroImpressionDeepPosition(t *testing.T) {
	// No impression signal and a page-three position with no AI coverage:
	// demand floors at 5, absence is 4 (deep position) + 2 (no mention).
	queries := []model.AggregatedQuery{
		{Text: "obscure query", Impressions: 0, AvgPosition: 25},
	}
	engineMap := model.QueryEngineMap{
		"obscure query": {
			"openai": {Mentioned: false},
		},
	}

	out := ComputeBlindSpots(queries, engineMap)
	require.Len(t, out, 1)

	assert.Equal(t, 5.0, out[0].DemandScore)
	assert.Equal(t, 6.0, out[0].AbsenceScore)
	assert.Equal(t, 30.0, out[0].BlindSpotScore)
	assert.Equal(t, model.PriorityMedium, out[0].Priority)
	assert.False(t, out[0].AIMentioned)
	assert.Equal(t, map[string]bool{"openai": false}, out[0].LLMMentions)
}

func TestDemandScore(t *testing.T) {
	tests := []struct {
		name        string
		impressions int
		max         int
		want        float64
	}{
		{"zero max floors", 0, 0, 5},
		{"no impressions", 0, 1000, 5},
		{"half of max", 500, 1000, 7.5},
		{"at max", 1000, 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, demandScore(tt.impressions, tt.max), 1e-9)
		})
	}
}

func TestAbsenceScore(t *testing.T) {
	tests := []struct {
		name      string
		position  float64
		mentioned bool
		want      float64
	}{
		{"page one, mentioned", 5, true, 0},
		{"page one, not mentioned", 5, false, 2},
		{"page two, mentioned", 15, true, 3},
		{"page two, not mentioned", 15, false, 5},
		{"beyond page two, mentioned", 25, true, 4},
		{"beyond page two, not mentioned", 25, false, 6},
		{"unranked, not mentioned", 0, false, 6},
		{"boundary position 10", 10, false, 2},
		{"boundary position 20", 20, false, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, absenceScore(tt.position, tt.mentioned))
		})
	}
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Priority
	}{
		{100, model.PriorityHigh},
		{50, model.PriorityHigh},
		{49.9, model.PriorityMedium},
		{20, model.PriorityMedium},
		{19.9, model.PriorityLow},
		{0, model.PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, priorityFor(tt.score), "score %v", tt.score)
	}
}

func TestComputeBlindSpotsSortedByScore(t *testing.T) {
	queries := []model.AggregatedQuery{
		{Text: "visible head term", Impressions: 1000, AvgPosition: 3},
		{Text: "neglected tail", Impressions: 1000, AvgPosition: 30},
	}
	engineMap := model.QueryEngineMap{
		"visible head term": {"openai": {Mentioned: true, Sentiment: 0.5}},
		"neglected tail":    {"openai": {Mentioned: false}},
	}

	out := ComputeBlindSpots(queries, engineMap)
	require.Len(t, out, 2)
	assert.Equal(t, "neglected tail", out[0].Text)
	// Max demand times full absence.
	assert.Equal(t, 60.0, out[0].BlindSpotScore)
	assert.Equal(t, model.PriorityHigh, out[0].Priority)

	assert.Equal(t, "visible head term", out[1].Text)
	assert.Equal(t, 0.0, out[1].BlindSpotScore)
	assert.True(t, out[1].AIMentioned)
}

func TestComputeBlindSpotsMentionAcrossEngines(t *testing.T) {
	queries := []model.AggregatedQuery{
		{Text: "q", Impressions: 10, AvgPosition: 5},
	}
	engineMap := model.QueryEngineMap{
		"q": {
			"openai":    {Mentioned: false},
			"anthropic": {Mentioned: true, Sentiment: 0.2},
		},
	}

	out := ComputeBlindSpots(queries, engineMap)
	require.Len(t, out, 1)
	assert.True(t, out[0].AIMentioned)
	assert.False(t, out[0].LLMMentions["openai"])
	assert.True(t, out[0].LLMMentions["anthropic"])
}

func TestComputeBlindSpotsTieBreaksOnText(t *testing.T) {
	queries := []model.AggregatedQuery{
		{Text: "zeta", Impressions: 100, AvgPosition: 25},
		{Text: "alpha", Impressions: 100, AvgPosition: 25},
	}

	out := ComputeBlindSpots(queries, model.QueryEngineMap{})
	require.Len(t, out, 2)
	assert.Equal(t, "alpha", out[0].Text)
	assert.Equal(t, "zeta", out[1].Text)
}

func TestBlindSpotSummary(t *testing.T) {
	spots := []model.BlindSpot{
		{Priority: model.PriorityHigh},
		{Priority: model.PriorityLow},
		{Priority: model.PriorityLow},
	}

	s := BlindSpotSummary(spots)
	assert.Equal(t, 3, s.TotalQueries)
	assert.Equal(t, 1, s.Priorities[model.PriorityHigh])
	assert.Equal(t, 2, s.Priorities[model.PriorityLow])
	assert.Nil(t, s.Bands)
}
