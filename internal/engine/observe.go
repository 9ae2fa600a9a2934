package engine

import (
	"fmt"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/domain/grid"
)

// ObsSize is the fixed length of every observation vector:
// position (2) + health (1) + inventory (1) + nearest food (2) +
// personality one-hot (3) + alliance flag (1) + neighbor summary (3) +
// signal flags (3) + 3x3 obstacle window (9) + reserved padding (15) = 40.
const ObsSize = 40

// obsPadding is reserved extension slack at the tail of every vector. It is
// emitted as explicit zeros, never omitted.
const obsPadding = 15

// Observe encodes the current world state as one fixed-layout vector per
// agent, in id order. It is read-only and runs only after all mutation for
// the step is finalized.
func (e *Env) Observe() [][]float64 {
	out := make([][]float64, 0, len(e.agents))
	for _, a := range e.agents {
		out = append(out, e.observeAgent(a))
	}
	return out
}

func (e *Env) observeAgent(a *agent.Agent) []float64 {
	obs := make([]float64, 0, ObsSize)

	// Position, raw grid coordinates.
	obs = append(obs, float64(a.Pos.X), float64(a.Pos.Y))

	// Health, normalized.
	obs = append(obs, a.Health/100.0)

	// Food inventory, raw count.
	obs = append(obs, float64(a.FoodInventory))

	// Vector to the nearest food cell, (0,0) when no food exists. Ties break
	// to the first occurrence in cell enumeration order.
	nearest, ok := e.nearestFood(a.Pos)
	if ok {
		obs = append(obs, float64(nearest.X-a.Pos.X), float64(nearest.Y-a.Pos.Y))
	} else {
		obs = append(obs, 0, 0)
	}

	// Personality one-hot: [cooperative, aggressive, neutral].
	obs = append(obs,
		oneHot(a.Personality == agent.Cooperative),
		oneHot(a.Personality == agent.Aggressive),
		oneHot(a.Personality == agent.Neutral),
	)

	// Alliance flag.
	obs = append(obs, oneHot(a.Allied()))

	// Neighbor summary and signal presence share the same radius-3 set.
	nearby := e.NearbyAgents(a, obsRadius)
	var coop, agg int
	var help, food, danger bool
	for _, id := range nearby {
		other := e.agents[id]
		switch other.Personality {
		case agent.Cooperative:
			coop++
		case agent.Aggressive:
			agg++
		}
		switch other.Signal {
		case agent.SignalHelp:
			help = true
		case agent.SignalFood:
			food = true
		case agent.SignalDanger:
			danger = true
		}
	}
	obs = append(obs, float64(len(nearby)), float64(coop), float64(agg))
	obs = append(obs, oneHot(help), oneHot(food), oneHot(danger))

	// 3x3 obstacle window centered on the agent, row-major over dx then dy.
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			c := grid.Cell{X: a.Pos.X + dx, Y: a.Pos.Y + dy}
			_, blocked := e.obstacles[c]
			obs = append(obs, oneHot(blocked))
		}
	}

	// Reserved padding.
	for i := 0; i < obsPadding; i++ {
		obs = append(obs, 0)
	}

	if len(obs) != ObsSize {
		panic(fmt.Sprintf("engine: observation has %d elements, expected %d", len(obs), ObsSize))
	}
	return obs
}

// nearestFood returns the food cell closest to pos by Euclidean distance.
// Strict less-than comparison keeps the first occurrence on ties.
func (e *Env) nearestFood(pos grid.Cell) (grid.Cell, bool) {
	if len(e.food) == 0 {
		return grid.Cell{}, false
	}
	best := e.food[0]
	bestDist := pos.DistanceTo(best)
	for _, f := range e.food[1:] {
		if d := pos.DistanceTo(f); d < bestDist {
			best = f
			bestDist = d
		}
	}
	return best, true
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
