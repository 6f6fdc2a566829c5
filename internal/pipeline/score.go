package pipeline

import (
	"math"
	"sort"

	"github.com/georepute/visibility-cli/internal/model"
)

// Gap score weights: position dominates the traditional side, mention share
// dominates the AI side.
const (
	gapWeightPosition   = 0.5
	gapWeightImpression = 0.3
	gapWeightCTR        = 0.2

	aiWeightMention   = 0.5
	aiWeightRank      = 0.3
	aiWeightSentiment = 0.2
)

// Band thresholds, inclusive lower bounds on the gap score.
const (
	bandAIRiskMin      = 40.0
	bandModerateMin    = 15.0
	bandBalancedMin    = -15.0 // exclusive
	bandOpportunityMin = -40.0 // exclusive
)

// ComputeGapScores scores every aggregated query against the cross-engine
// mention data and returns the gap-variant entries sorted by gap score
// descending. totalEngines is the number of engines used for the run; with
// zero engines the AI side contributes nothing. Pure function, no I/O.
func ComputeGapScores(queries []model.AggregatedQuery, engineMap model.QueryEngineMap, totalEngines int) []model.ScoredQuery {
	maxImpressions, maxCTR := batchMaxima(queries)

	out := make([]model.ScoredQuery, 0, len(queries))
	for _, q := range queries {
		engines := engineMap[q.Text]

		sq := model.ScoredQuery{
			AggregatedQuery: q,
			GoogleScore:     googleScore(q, maxImpressions, maxCTR),
			AIScore:         aiScore(engines, totalEngines),
			Engines:         engines,
		}
		if sq.Engines == nil {
			sq.Engines = map[string]model.EngineResult{}
		}
		sq.GapScore = sq.GoogleScore - sq.AIScore
		sq.Band = bandFor(sq.GapScore)
		out = append(out, sq)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GapScore != out[j].GapScore {
			return out[i].GapScore > out[j].GapScore
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// googleScore rewards low position numbers with log decay and normalizes
// impressions and CTR against the batch maxima.
func googleScore(q model.AggregatedQuery, maxImpressions int, maxCTR float64) float64 {
	positionScore := clampFloat(1-math.Log(math.Max(q.AvgPosition, 1))/math.Log(100), 0, 1)

	var impressionScore float64
	if maxImpressions > 0 {
		impressionScore = float64(q.Impressions) / float64(maxImpressions)
	}
	var ctrScore float64
	if maxCTR > 0 {
		ctrScore = q.CTR / maxCTR
	}

	return 100 * (gapWeightPosition*positionScore + gapWeightImpression*impressionScore + gapWeightCTR*ctrScore)
}

// aiScore combines mention share, average rank quality, and sentiment across
// the engines that answered for this query. Zero mentions or zero engines
// yields zero AI-side contribution.
func aiScore(engines map[string]model.EngineResult, totalEngines int) float64 {
	if totalEngines <= 0 || len(engines) == 0 {
		return 0
	}

	var mentions, ranked int
	var rankSum, sentimentSum float64
	for _, res := range engines {
		if !res.Mentioned {
			continue
		}
		mentions++
		sentimentSum += res.Sentiment
		if res.RankPosition != nil {
			ranked++
			rankSum += 1 - float64(*res.RankPosition-1)/10
		}
	}
	if mentions == 0 {
		return 0
	}

	mentionFraction := float64(mentions) / float64(totalEngines)

	var avgRankScore float64
	if ranked > 0 {
		avgRankScore = rankSum / float64(ranked)
	}

	avgSentiment := sentimentSum / float64(mentions)
	normalizedSentiment := (avgSentiment + 1) / 2

	return 100 * (aiWeightMention*mentionFraction + aiWeightRank*avgRankScore + aiWeightSentiment*normalizedSentiment)
}

// bandFor maps a gap score onto its outcome band.
func bandFor(gapScore float64) model.Band {
	switch {
	case gapScore >= bandAIRiskMin:
		return model.BandAIRisk
	case gapScore >= bandModerateMin:
		return model.BandModerateGap
	case gapScore > bandBalancedMin:
		return model.BandBalanced
	case gapScore > bandOpportunityMin:
		return model.BandSEOOpportunity
	default:
		return model.BandSEOFailure
	}
}

// batchMaxima returns the batch-wide impression and CTR maxima used for
// linear normalization.
func batchMaxima(queries []model.AggregatedQuery) (int, float64) {
	var maxImpressions int
	var maxCTR float64
	for _, q := range queries {
		if q.Impressions > maxImpressions {
			maxImpressions = q.Impressions
		}
		if q.CTR > maxCTR {
			maxCTR = q.CTR
		}
	}
	return maxImpressions, maxCTR
}

// GapSummary tallies band counts for a scored list.
func GapSummary(queries []model.ScoredQuery) model.Summary {
	s := model.Summary{
		TotalQueries: len(queries),
		Bands:        make(map[model.Band]int),
	}
	for _, q := range queries {
		s.Bands[q.Band]++
	}
	return s
}
