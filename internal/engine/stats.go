package engine

import "github.com/ecosim-lab/ecosim/internal/domain/agent"

// StepInfo is the per-step summary derived from world state. Counters are
// cumulative for the episode.
type StepInfo struct {
	SurvivalRate       float64            `json:"survival_rate"`
	AvgScore           float64            `json:"avg_score"`
	TotalFoodCollected int                `json:"total_food_collected"`
	CooperationEvents  int                `json:"cooperation_events"`
	TheftEvents        int                `json:"theft_events"`
	AllianceFormations int                `json:"alliance_formations"`
	NumAlliances       int                `json:"num_alliances"`
	AvgHealth          float64            `json:"avg_health"`
	PersonalityScores  map[string]float64 `json:"personality_scores"`
}

// stepInfo computes the summary statistics for the current state. A
// personality with no agents in the episode reports a mean score of zero
// rather than an undefined value.
func (e *Env) stepInfo() StepInfo {
	var surviving int
	var totalScore int
	var totalHealth float64

	scoreSum := make(map[agent.Personality]int, 3)
	count := make(map[agent.Personality]int, 3)

	for _, a := range e.agents {
		if a.Score > 0 {
			surviving++
		}
		totalScore += a.Score
		totalHealth += a.Health
		scoreSum[a.Personality] += a.Score
		count[a.Personality]++
	}

	n := float64(len(e.agents))
	personalityScores := make(map[string]float64, 3)
	for _, p := range []agent.Personality{agent.Cooperative, agent.Aggressive, agent.Neutral} {
		if count[p] == 0 {
			personalityScores[p.String()] = 0
			continue
		}
		personalityScores[p.String()] = float64(scoreSum[p]) / float64(count[p])
	}

	return StepInfo{
		SurvivalRate:       float64(surviving) / n,
		AvgScore:           float64(totalScore) / n,
		TotalFoodCollected: totalScore,
		CooperationEvents:  e.cooperationEvents,
		TheftEvents:        e.theftEvents,
		AllianceFormations: e.allianceFormations,
		NumAlliances:       e.alliances.Count(),
		AvgHealth:          totalHealth / n,
		PersonalityScores:  personalityScores,
	}
}
