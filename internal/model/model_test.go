package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "best crm software", NormalizeQuery("  Best CRM Software "))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestReportTypeValid(t *testing.T) {
	assert.True(t, ReportTypeGap.Valid())
	assert.True(t, ReportTypeBlindSpot.Valid())
	assert.False(t, ReportType("").Valid())
	assert.False(t, ReportType("weekly").Valid())
}

func TestQueryEngineMapAdd(t *testing.T) {
	m := QueryEngineMap{}
	m.Add("q1", "openai", EngineResult{Mentioned: true, Sentiment: 0.5})
	m.Add("q1", "gemini", EngineResult{Mentioned: false})
	m.Add("q2", "openai", EngineResult{Mentioned: false})

	require.Len(t, m, 2)
	require.Len(t, m["q1"], 2)
	assert.True(t, m["q1"]["openai"].Mentioned)
	assert.False(t, m["q1"]["gemini"].Mentioned)

	// Re-adding overwrites the engine's slot.
	m.Add("q1", "openai", EngineResult{Mentioned: false})
	assert.False(t, m["q1"]["openai"].Mentioned)
}

func TestTokenUsageAdd(t *testing.T) {
	u := TokenUsage{InputTokens: 10, OutputTokens: 5}
	u.Add(TokenUsage{InputTokens: 3, OutputTokens: 2})
	assert.Equal(t, int64(13), u.InputTokens)
	assert.Equal(t, int64(7), u.OutputTokens)
}
