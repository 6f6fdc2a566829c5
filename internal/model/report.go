package model

import "time"

// ReportType selects the scoring variant of a report.
type ReportType string

const (
	ReportTypeGap       ReportType = "gap"
	ReportTypeBlindSpot ReportType = "blindspot"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportTypeGap || t == ReportTypeBlindSpot
}

// Band is the outcome classification of a gap-scored query.
type Band string

const (
	BandAIRisk         Band = "ai_risk"
	BandModerateGap    Band = "moderate_gap"
	BandBalanced       Band = "balanced"
	BandSEOOpportunity Band = "seo_opportunity"
	BandSEOFailure     Band = "seo_failure"
)

// Priority is the action classification of a blind-spot query.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ScoredQuery is one gap-variant entry: the aggregated query plus its
// traditional, AI, and gap scores and the per-engine results behind them.
type ScoredQuery struct {
	AggregatedQuery
	GoogleScore float64                 `json:"google_score"`
	AIScore     float64                 `json:"ai_score"`
	GapScore    float64                 `json:"gap_score"`
	Band        Band                    `json:"band"`
	Engines     map[string]EngineResult `json:"engines"`
}

// BlindSpot is one priority-variant entry: demand and absence scores with
// the per-engine mention flags behind them.
type BlindSpot struct {
	AggregatedQuery
	AIMentioned    bool            `json:"ai_mentioned"`
	LLMMentions    map[string]bool `json:"llm_mentions"`
	DemandScore    float64         `json:"demand_score"`
	AbsenceScore   float64         `json:"absence_score"`
	BlindSpotScore float64         `json:"blind_spot_score"`
	Priority       Priority        `json:"priority"`
}

// Summary counts report entries by band (gap variant) or priority
// (blind-spot variant).
type Summary struct {
	TotalQueries int              `json:"total_queries"`
	Bands        map[Band]int     `json:"bands,omitempty"`
	Priorities   map[Priority]int `json:"priorities,omitempty"`
}

// EngineStats records one engine's activity during a run.
type EngineStats struct {
	Calls        int        `json:"calls"`
	Failures     int        `json:"failures"`
	Mentions     int        `json:"mentions"`
	Usage        TokenUsage `json:"usage"`
	EstimatedUSD float64    `json:"estimated_usd"`
}

// Report is the persisted output of one pipeline run. Exactly one of
// Queries or BlindSpots is populated depending on Type.
type Report struct {
	AccountID   string                 `json:"account_id"`
	Domain      string                 `json:"domain"`
	Type        ReportType             `json:"type"`
	GeneratedAt time.Time              `json:"generated_at"`
	Queries     []ScoredQuery          `json:"queries,omitempty"`
	BlindSpots  []BlindSpot            `json:"blind_spots,omitempty"`
	Summary     Summary                `json:"summary"`
	EnginesUsed []string               `json:"engines_used"`
	Stats       map[string]EngineStats `json:"stats"`
}
