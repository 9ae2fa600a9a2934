package engine

import (
	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/domain/grid"
)

// Phase-1 reward schedule. Foraging overwrites the step cost rather than
// adding to it.
const (
	rewardCollision = -5
	rewardStepCost  = -1
	rewardForage    = 15
)

// resolveMovement is phase 1 of a step, processed in ascending agent id
// order. Every agent's communication signal is cleared here, whatever its
// action is.
func (e *Env) resolveMovement(actions []int, rewards []float64) {
	for i, action := range actions {
		a := e.agents[i]
		a.Signal = agent.SignalNone

		if action > ActionRight {
			continue
		}

		d := moveDeltas[action]
		next := grid.Cell{
			X: grid.Clamp(a.Pos.X+d.X, 0, e.gridSize-1),
			Y: grid.Clamp(a.Pos.Y+d.Y, 0, e.gridSize-1),
		}

		if _, blocked := e.obstacles[next]; blocked {
			rewards[i] = rewardCollision
			a.LoseHealth(2)
			continue
		}

		a.Pos = next
		rewards[i] = rewardStepCost

		if e.consumeFoodAt(next) {
			a.FoodInventory++
			a.Score++
			a.GainHealth(10)
			rewards[i] = rewardForage
			// Respawn keeps the total resource count constant for the episode.
			e.food = append(e.food, e.randomCell())
		}
	}
}

// consumeFoodAt removes exactly one food unit at the given cell, taking the
// first match in enumeration order. Duplicates at the same cell survive;
// only one unit is consumed per visit.
func (e *Env) consumeFoodAt(c grid.Cell) bool {
	for i, f := range e.food {
		if f == c {
			e.food = append(e.food[:i], e.food[i+1:]...)
			return true
		}
	}
	return false
}
