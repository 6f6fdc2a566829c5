package model

// EngineResult is one engine's sanitized verdict for one query: whether the
// domain was mentioned, where it ranked if a rank was given, and the
// sentiment of the mention on [-1, 1].
type EngineResult struct {
	Mentioned    bool    `json:"mentioned"`
	RankPosition *int    `json:"rank_position,omitempty"`
	Sentiment    float64 `json:"sentiment"`
}

// QueryEngineMap accumulates results keyed by query text, then engine key.
type QueryEngineMap map[string]map[string]EngineResult

// Add records one engine's result for one query.
func (m QueryEngineMap) Add(query, engineKey string, res EngineResult) {
	byEngine, ok := m[query]
	if !ok {
		byEngine = make(map[string]EngineResult)
		m[query] = byEngine
	}
	byEngine[engineKey] = res
}

// TokenUsage counts prompt and completion tokens consumed by engine calls.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add accumulates another usage record into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
