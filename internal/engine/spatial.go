package engine

import "github.com/ecosim-lab/ecosim/internal/domain/agent"

// The two interaction radii are independently meaningful: observations and
// signal visibility use obsRadius, social-action eligibility uses
// socialRadius. They must not be unified.
const (
	obsRadius    = 3.0
	socialRadius = 2.0
)

// NearbyAgents returns the ids of every other agent within the given
// Euclidean radius (boundary inclusive), in ascending id order. The linear
// scan is O(N) per query, which is fine at tens to low hundreds of agents;
// any spatial index replacing it must return the identical id set.
func (e *Env) NearbyAgents(a *agent.Agent, radius float64) []int {
	var nearby []int
	for _, other := range e.agents {
		if other.ID == a.ID {
			continue
		}
		if a.Pos.DistanceTo(other.Pos) <= radius {
			nearby = append(nearby, other.ID)
		}
	}
	return nearby
}
