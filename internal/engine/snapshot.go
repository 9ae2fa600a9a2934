package engine

import (
	"sort"

	"github.com/ecosim-lab/ecosim/internal/domain/grid"
)

// RenderState is a read-only view of the world for display and replay. It is
// never a mutation path back into the engine.
type RenderState struct {
	Agents            []grid.Cell `json:"agents"`
	Food              []grid.Cell `json:"food"`
	Obstacles         []grid.Cell `json:"obstacles"`
	Scores            []int       `json:"scores"`
	Health            []float64   `json:"health"`
	Personalities     []int       `json:"personalities"`
	Alliances         []int       `json:"alliances"`
	FoodInventory     []int       `json:"food_inventory"`
	Communication     []int       `json:"communication"`
	Steps             int         `json:"steps"`
	SurvivalRate      float64     `json:"survival_rate"`
	CooperationEvents int         `json:"cooperation_events"`
	TheftEvents       int         `json:"theft_events"`
	NumAlliances      int         `json:"num_alliances"`
	AvgHealth         float64     `json:"avg_health"`
}

// Snapshot copies the current world state into a RenderState. Obstacles are
// sorted so snapshots of the same state compare byte-equal.
func (e *Env) Snapshot() RenderState {
	n := len(e.agents)
	s := RenderState{
		Agents:        make([]grid.Cell, n),
		Food:          make([]grid.Cell, len(e.food)),
		Obstacles:     make([]grid.Cell, 0, len(e.obstacles)),
		Scores:        make([]int, n),
		Health:        make([]float64, n),
		Personalities: make([]int, n),
		Alliances:     make([]int, n),
		FoodInventory: make([]int, n),
		Communication: make([]int, n),
		Steps:         e.steps,
	}

	var surviving int
	var totalHealth float64
	for i, a := range e.agents {
		s.Agents[i] = a.Pos
		s.Scores[i] = a.Score
		s.Health[i] = a.Health
		s.Personalities[i] = int(a.Personality)
		s.Alliances[i] = a.AllianceID
		s.FoodInventory[i] = a.FoodInventory
		s.Communication[i] = int(a.Signal)
		if a.Score > 0 {
			surviving++
		}
		totalHealth += a.Health
	}

	copy(s.Food, e.food)
	for c := range e.obstacles {
		s.Obstacles = append(s.Obstacles, c)
	}
	sort.Slice(s.Obstacles, func(i, j int) bool {
		if s.Obstacles[i].X != s.Obstacles[j].X {
			return s.Obstacles[i].X < s.Obstacles[j].X
		}
		return s.Obstacles[i].Y < s.Obstacles[j].Y
	})

	s.SurvivalRate = float64(surviving) / float64(n)
	s.CooperationEvents = e.cooperationEvents
	s.TheftEvents = e.theftEvents
	s.NumAlliances = e.alliances.Count()
	s.AvgHealth = totalHealth / float64(n)
	return s
}

// FoodCount returns the current number of food cells. The total is constant
// across an episode because every consumption is paired with a respawn.
func (e *Env) FoodCount() int {
	return len(e.food)
}
