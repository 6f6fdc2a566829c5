package pipeline

import (
	"sort"

	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/model"
)

// aggState accumulates one normalized query's merge in progress.
type aggState struct {
	text        string
	clicks      int
	impressions int
	posWeighted float64 // sum of position*impressions
	posSum      float64 // plain sum, fallback when all rows have zero impressions
	rows        int
}

// Aggregate collapses raw per-day performance rows into one AggregatedQuery
// per distinct normalized query text, sorted descending by impressions and
// truncated to maxQueries (0 or negative means no cap).
//
// CTR is recomputed from the summed clicks and impressions. AvgPosition is an
// impression-weighted mean; when every merged row carries zero impressions it
// falls back to the arithmetic mean so the position signal is not lost.
func Aggregate(rows []model.PerformanceRow, maxQueries int) []model.AggregatedQuery {
	states := make(map[string]*aggState)

	for _, row := range rows {
		text := model.NormalizeQuery(row.Query)
		if text == "" {
			continue
		}
		clicks, impressions := row.Clicks, row.Impressions
		if clicks < 0 {
			clicks = 0
		}
		if impressions < clicks {
			impressions = clicks
		}

		st, ok := states[text]
		if !ok {
			st = &aggState{text: text}
			states[text] = st
		}
		st.clicks += clicks
		st.impressions += impressions
		st.posWeighted += row.Position * float64(impressions)
		st.posSum += row.Position
		st.rows++
	}

	out := make([]model.AggregatedQuery, 0, len(states))
	for _, st := range states {
		q := model.AggregatedQuery{
			Text:        st.text,
			Clicks:      st.clicks,
			Impressions: st.impressions,
		}
		if st.impressions > 0 {
			q.CTR = float64(st.clicks) / float64(st.impressions)
			q.AvgPosition = st.posWeighted / float64(st.impressions)
		} else if st.rows > 0 {
			q.AvgPosition = st.posSum / float64(st.rows)
		}
		out = append(out, q)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Impressions != out[j].Impressions {
			return out[i].Impressions > out[j].Impressions
		}
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Text < out[j].Text
	})

	if maxQueries > 0 && len(out) > maxQueries {
		zap.L().Debug("aggregate: truncating query set",
			zap.Int("distinct", len(out)),
			zap.Int("max", maxQueries),
		)
		out = out[:maxQueries]
	}

	return out
}
