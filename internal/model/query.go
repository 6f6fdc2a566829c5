package model

import "strings"

// PerformanceRow is one raw search-performance row as delivered by the
// source, typically one (query, day) cell.
type PerformanceRow struct {
	Query       string  `json:"query"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// AggregatedQuery is one distinct normalized query after merging all of its
// raw rows.
type AggregatedQuery struct {
	Text        string  `json:"text"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	CTR         float64 `json:"ctr"`
	AvgPosition float64 `json:"avg_position"`
}

// NormalizeQuery trims surrounding whitespace and lowercases the query text.
// Two raw rows with the same normalized text belong to the same query.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
