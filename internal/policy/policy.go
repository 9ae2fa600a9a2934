// Package policy holds the decision components that turn observation vectors
// into action codes. Policies are stateless from the engine's point of view:
// the driver calls SelectActions once per step and feeds the result back in.
package policy

import (
	"math/rand"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
)

// Policy maps one observation batch to one action per agent.
type Policy interface {
	SelectActions(observations [][]float64, personalities []agent.Personality) []int
}

// Heuristic is a seeded categorical sampler biased by personality:
// cooperative agents lean toward social actions, aggressive agents toward
// movement and stealing, neutral agents move only.
type Heuristic struct {
	rng *rand.Rand
}

// actionTable pairs action codes with sampling weights.
type actionTable struct {
	actions []int
	weights []float64
}

var (
	cooperativeTable = actionTable{
		actions: []int{0, 1, 2, 3, 4, 5, 7, 8},
		weights: []float64{0.2, 0.15, 0.15, 0.15, 0.15, 0.1, 0.05, 0.05},
	}
	aggressiveTable = actionTable{
		actions: []int{0, 1, 2, 3, 4, 6},
		weights: []float64{0.1, 0.2, 0.2, 0.2, 0.2, 0.1},
	}
	neutralTable = actionTable{
		actions: []int{0, 1, 2, 3, 4},
		weights: []float64{0.2, 0.2, 0.2, 0.2, 0.2},
	}
)

// NewHeuristic returns a heuristic policy with its own seeded source.
func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

// SelectActions draws one action per agent from that agent's personality
// table. Observations are accepted for interface compatibility; the
// heuristic does not inspect them.
func (h *Heuristic) SelectActions(observations [][]float64, personalities []agent.Personality) []int {
	actions := make([]int, len(personalities))
	for i, p := range personalities {
		var table actionTable
		switch p {
		case agent.Cooperative:
			table = cooperativeTable
		case agent.Aggressive:
			table = aggressiveTable
		default:
			table = neutralTable
		}
		actions[i] = table.sample(h.rng)
	}
	return actions
}

func (t actionTable) sample(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	for i, w := range t.weights {
		acc += w
		if r < acc {
			return t.actions[i]
		}
	}
	return t.actions[len(t.actions)-1]
}
