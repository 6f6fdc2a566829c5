// Package engine holds the answer-engine panel: a registry of adapters that
// each turn a shared prompt into one engine's raw answer text. Provider
// envelope differences stay inside the adapters; everything downstream sees
// the uniform Completion shape.
package engine

import (
	"context"

	"github.com/georepute/visibility-cli/internal/model"
)

// Engine keys, stable across runs and reports.
const (
	KeyOpenAI     = "openai"
	KeyAnthropic  = "anthropic"
	KeyPerplexity = "perplexity"
	KeyGemini     = "gemini"
	KeyDeepSeek   = "deepseek"
)

// Completion is the uniform outcome of one engine call: the engine's answer
// text plus reported token usage.
type Completion struct {
	Text  string
	Usage model.TokenUsage
}

// Engine is one configured answer engine. Complete sends the shared prompt
// and returns the engine's free-text reply; an error means total engine
// failure for that batch.
type Engine interface {
	Key() string
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// completionParams are shared across all adapters so every engine receives
// the same stimulus under the same sampling constraints.
var (
	completionTemperature = 0.1
	completionMaxTokens   = 2000
)
