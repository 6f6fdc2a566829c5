package pipeline

import (
	"math"
	"sort"

	"github.com/georepute/visibility-cli/internal/model"
)

// Blind-spot thresholds.
const (
	demandFloor      = 5.0
	demandCeiling    = 10.0
	absenceCap       = 10.0
	priorityHighMin  = 50.0
	priorityMedMin   = 20.0
)

// ComputeBlindSpots scores every aggregated query for the priority variant
// and returns the entries sorted by blind-spot score descending. Pure
// function, no I/O.
func ComputeBlindSpots(queries []model.AggregatedQuery, engineMap model.QueryEngineMap) []model.BlindSpot {
	var maxImpressions int
	for _, q := range queries {
		if q.Impressions > maxImpressions {
			maxImpressions = q.Impressions
		}
	}

	out := make([]model.BlindSpot, 0, len(queries))
	for _, q := range queries {
		engines := engineMap[q.Text]

		mentions := make(map[string]bool, len(engines))
		mentioned := false
		for key, res := range engines {
			mentions[key] = res.Mentioned
			if res.Mentioned {
				mentioned = true
			}
		}

		bs := model.BlindSpot{
			AggregatedQuery: q,
			AIMentioned:     mentioned,
			LLMMentions:     mentions,
			DemandScore:     demandScore(q.Impressions, maxImpressions),
			AbsenceScore:    absenceScore(q.AvgPosition, mentioned),
		}
		bs.BlindSpotScore = bs.DemandScore * bs.AbsenceScore
		bs.Priority = priorityFor(bs.BlindSpotScore)
		out = append(out, bs)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlindSpotScore != out[j].BlindSpotScore {
			return out[i].BlindSpotScore > out[j].BlindSpotScore
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// demandScore scales impressions against the batch maximum onto [5,10].
// The floor of 5 applies when there is zero impression signal.
func demandScore(impressions, maxImpressions int) float64 {
	if maxImpressions <= 0 {
		return demandFloor
	}
	return math.Min(demandCeiling, demandFloor+demandFloor*float64(impressions)/float64(maxImpressions))
}

// absenceScore measures how invisible the query is: 4 points for ranking
// beyond page two (or not at all), 3 for beyond page one, plus 2 when no
// engine mentioned the domain. Capped at 10.
func absenceScore(position float64, mentioned bool) float64 {
	score := 0.0
	if position > 20 || position <= 0 {
		score += 4
	} else if position > 10 {
		score += 3
	}
	if !mentioned {
		score += 2
	}
	return math.Min(score, absenceCap)
}

// priorityFor maps a blind-spot score onto its action priority.
func priorityFor(score float64) model.Priority {
	switch {
	case score >= priorityHighMin:
		return model.PriorityHigh
	case score >= priorityMedMin:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// BlindSpotSummary tallies priority counts for a prioritized list.
func BlindSpotSummary(spots []model.BlindSpot) model.Summary {
	s := model.Summary{
		TotalQueries: len(spots),
		Priorities:   make(map[model.Priority]int),
	}
	for _, b := range spots {
		s.Priorities[b.Priority]++
	}
	return s
}
