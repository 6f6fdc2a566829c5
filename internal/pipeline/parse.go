package pipeline

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/georepute/visibility-cli/internal/model"
)

// rawEngineResult mirrors one element of an engine's reply array before
// sanitization. Fields are loosely typed because engines routinely return
// strings where numbers belong and vice versa.
type rawEngineResult struct {
	Mentioned    any `json:"mentioned"`
	RankPosition any `json:"rank_position"`
	Sentiment    any `json:"sentiment"`
}

// ParseEngineResults turns an engine's free-text reply into exactly n
// sanitized results, mapped positionally onto the batch's queries. It returns
// nil when the reply is not a parsable JSON array; callers treat that as
// total engine failure for the batch. When the call succeeded but the array
// is short, the tail is padded with not-mentioned results so every query has
// a result for that engine.
func ParseEngineResults(text string, n int) []model.EngineResult {
	cleaned := cleanAnswerJSON(text)

	var raw []rawEngineResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}

	out := make([]model.EngineResult, n)
	for i := 0; i < n; i++ {
		if i >= len(raw) {
			out[i] = model.EngineResult{}
			continue
		}
		out[i] = sanitizeResult(raw[i])
	}
	return out
}

// cleanAnswerJSON strips markdown code fences around an engine reply.
func cleanAnswerJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// sanitizeResult clamps one raw element into the canonical EngineResult
// shape: rank only when mentioned and numeric, rounded into [1,10];
// sentiment forced into [-1,1] with non-numeric values read as 0.
func sanitizeResult(r rawEngineResult) model.EngineResult {
	res := model.EngineResult{
		Mentioned: coerceBool(r.Mentioned),
		Sentiment: clampFloat(coerceFloat(r.Sentiment, 0), -1, 1),
	}
	if res.Mentioned {
		if v, ok := asFloat(r.RankPosition); ok {
			rank := int(math.Round(clampFloat(v, 1, 10)))
			res.RankPosition = &rank
		}
	}
	return res
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes" || s == "1"
	default:
		return false
	}
}

func coerceFloat(v any, fallback float64) float64 {
	f, ok := asFloat(v)
	if !ok {
		return fallback
	}
	return f
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
