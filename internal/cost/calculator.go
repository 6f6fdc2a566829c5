// Package cost converts engine token usage into estimated USD.
package cost

import (
	"github.com/georepute/visibility-cli/internal/config"
	"github.com/georepute/visibility-cli/internal/model"
)

// Calculator computes estimated costs for answer-engine usage.
type Calculator struct {
	rates map[string]config.EnginePricing
}

// NewCalculator creates a Calculator from configured per-engine rates.
func NewCalculator(pricing config.PricingConfig) *Calculator {
	return &Calculator{rates: pricing.Engines}
}

// EngineCost computes the estimated cost in USD for one engine's token usage.
// Unknown engines cost 0.
func (c *Calculator) EngineCost(engineKey string, usage model.TokenUsage) float64 {
	rate, ok := c.rates[engineKey]
	if !ok {
		return 0
	}
	inCost := (float64(usage.InputTokens) / 1e6) * rate.Input
	outCost := (float64(usage.OutputTokens) / 1e6) * rate.Output
	return inCost + outCost
}

// Annotate fills EstimatedUSD on every stats entry and returns the run total.
func (c *Calculator) Annotate(stats map[string]*model.EngineStats) float64 {
	var total float64
	for key, st := range stats {
		st.EstimatedUSD = c.EngineCost(key, st.Usage)
		total += st.EstimatedUSD
	}
	return total
}
