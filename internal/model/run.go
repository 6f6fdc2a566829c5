package model

import "time"

// RunStats is the best-effort analytics record written after a pipeline run.
// Failures to persist it never affect the run's outcome.
type RunStats struct {
	ID          string                 `json:"id"`
	AccountID   string                 `json:"account_id"`
	Domain      string                 `json:"domain"`
	Type        ReportType             `json:"type"`
	DurationMS  int64                  `json:"duration_ms"`
	EnginesUsed []string               `json:"engines_used"`
	Stats       map[string]EngineStats `json:"stats"`
	TotalUSD    float64                `json:"total_usd"`
	CreatedAt   time.Time              `json:"created_at"`
}
