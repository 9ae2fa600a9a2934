// Package agent defines the core domain entities for ecosystem inhabitants.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package agent

import "github.com/ecosim-lab/ecosim/internal/domain/grid"

// Personality is the immutable behavioral class of an agent. It gates which
// social actions are effective for the whole episode.
type Personality int

const (
	Cooperative Personality = iota // Shares food, forms alliances
	Aggressive                     // Steals food, lone wolf
	Neutral                        // Solo player, movement only
)

// String returns the lowercase tag used in reports and persistence.
func (p Personality) String() string {
	switch p {
	case Cooperative:
		return "cooperative"
	case Aggressive:
		return "aggressive"
	case Neutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// Signal is a one-step communicative flag, reset at the start of every step.
// Food and Danger are recognized by the observation encoder but never emitted
// by the current behavior set; they are reserved signal kinds.
type Signal int

const (
	SignalNone Signal = iota
	SignalHelp
	SignalFood
	SignalDanger
)

// NoAlliance marks an agent that does not belong to any alliance.
const NoAlliance = -1

// Agent represents one inhabitant of the grid world. The ID is the agent's
// index in the world arena and is stable for the whole episode.
type Agent struct {
	ID          int         `json:"id"`
	Pos         grid.Cell   `json:"pos"`
	Personality Personality `json:"personality"`

	// Vitals
	Health float64 `json:"health"` // 0-100
	Score  int     `json:"score"`  // monotonically non-decreasing

	// Social
	AllianceID    int    `json:"alliance_id"` // NoAlliance when unallied
	FoodInventory int    `json:"food_inventory"`
	Signal        Signal `json:"signal"`
}

// New creates a fresh agent with default starting vitals.
func New(id int, pos grid.Cell, personality Personality) *Agent {
	return &Agent{
		ID:          id,
		Pos:         pos,
		Personality: personality,
		Health:      100,
		Score:       0,
		AllianceID:  NoAlliance,
		Signal:      SignalNone,
	}
}

// Allied reports whether the agent currently belongs to an alliance.
func (a *Agent) Allied() bool {
	return a.AllianceID != NoAlliance
}

// GainHealth raises health, capped at 100.
func (a *Agent) GainHealth(amount float64) {
	a.Health += amount
	if a.Health > 100 {
		a.Health = 100
	}
}

// LoseHealth lowers health, floored at 0.
func (a *Agent) LoseHealth(amount float64) {
	a.Health -= amount
	if a.Health < 0 {
		a.Health = 0
	}
}
