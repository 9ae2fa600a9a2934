// Package engine contains the discrete-time ecosystem simulation.
// This is the heartbeat of ecosim.
//
// ARCHITECTURAL RULE: the engine is single-threaded and step-synchronous.
// Reset and Step are the only entry points, invoked by an external driver in
// strict alternation. Nothing in this package performs blocking I/O; the
// collaborators (websocket hub, storage) observe the world from outside.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/domain/grid"
	"github.com/ecosim-lab/ecosim/internal/events"
)

// EpisodeLength is the fixed number of steps per episode. The episode is
// terminal once the step counter reaches it; there is no other termination
// condition and agents are never removed.
const EpisodeLength = 500

// Personality distribution used at reset: 40% cooperative, 30% aggressive,
// 30% neutral.
var personalityWeights = [3]float64{0.4, 0.3, 0.3}

// ErrEpisodeOver is returned by Step once the episode has reached its
// terminal step and no further transitions are accepted.
var ErrEpisodeOver = errors.New("engine: episode is terminal, call Reset")

// Env owns the full world state: the agent arena, food cells, obstacles,
// the alliance registry and the episode counters.
type Env struct {
	gridSize     int
	numAgents    int
	numFood      int
	numObstacles int

	rng *rand.Rand

	agents    []*agent.Agent
	food      []grid.Cell // duplicates allowed; first-match removal semantics
	obstacles map[grid.Cell]struct{}
	alliances *AllianceRegistry

	steps      int
	episode    int
	terminated bool

	cooperationEvents  int
	theftEvents        int
	allianceFormations int

	log *events.Log
}

// StepResult bundles everything a single transition produces.
type StepResult struct {
	Observations [][]float64
	Rewards      []float64
	Terminated   bool
	Truncated    bool
	Info         StepInfo
}

// NewEnv validates the world dimensions and returns a fresh environment.
// No partially constructed environment is ever returned. The event log is
// optional; pass nil to run without event recording.
func NewEnv(gridSize, numAgents, numFood, numObstacles int, log *events.Log) (*Env, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("engine: gridSize must be positive, got %d", gridSize)
	}
	if numAgents <= 0 {
		return nil, fmt.Errorf("engine: numAgents must be positive, got %d", numAgents)
	}
	if numFood < 0 {
		return nil, fmt.Errorf("engine: numFood must be non-negative, got %d", numFood)
	}
	if numObstacles < 0 {
		return nil, fmt.Errorf("engine: numObstacles must be non-negative, got %d", numObstacles)
	}
	return &Env{
		gridSize:     gridSize,
		numAgents:    numAgents,
		numFood:      numFood,
		numObstacles: numObstacles,
		log:          log,
	}, nil
}

// Reset (re)initializes the whole world from the given seed and returns the
// initial observation batch. The same seed always produces the identical
// initial state, and the identical trajectory given identical actions.
func (e *Env) Reset(seed int64) [][]float64 {
	e.rng = rand.New(rand.NewSource(seed))

	e.agents = make([]*agent.Agent, 0, e.numAgents)
	for i := 0; i < e.numAgents; i++ {
		personality := e.samplePersonality()
		pos := e.randomCell()
		e.agents = append(e.agents, agent.New(i, pos, personality))
	}

	// Food cells are placed independently with replacement: duplicate cells
	// are valid and load-bearing for the first-match removal semantics.
	e.food = make([]grid.Cell, 0, e.numFood)
	for i := 0; i < e.numFood; i++ {
		e.food = append(e.food, e.randomCell())
	}

	e.obstacles = make(map[grid.Cell]struct{}, e.numObstacles)
	for i := 0; i < e.numObstacles; i++ {
		e.obstacles[e.randomCell()] = struct{}{}
	}

	e.alliances = NewAllianceRegistry()
	e.steps = 0
	e.terminated = false
	e.cooperationEvents = 0
	e.theftEvents = 0
	e.allianceFormations = 0
	e.episode++

	e.record(events.SimEvent{
		Type:     events.EventTypeEpisodeStart,
		ActorID:  -1,
		TargetID: -1,
		Payload:  map[string]int64{"seed": seed},
	})

	return e.Observe()
}

// Step runs one two-phase transition: the movement resolver, the social
// resolver, the alliance and decay bookkeeping, and finally the observation
// encoding and per-step statistics. Input is validated atomically before any
// mutation.
func (e *Env) Step(actions []int) (*StepResult, error) {
	if e.agents == nil {
		return nil, errors.New("engine: Step called before Reset")
	}
	if e.terminated {
		return nil, ErrEpisodeOver
	}
	if len(actions) != e.numAgents {
		return nil, fmt.Errorf("engine: expected %d actions, got %d", e.numAgents, len(actions))
	}
	for i, a := range actions {
		if a < ActionStay || a > ActionSignalHelp {
			return nil, fmt.Errorf("engine: action %d for agent %d outside [0,%d]", a, i, ActionSignalHelp)
		}
	}

	rewards := make([]float64, e.numAgents)

	e.resolveMovement(actions, rewards)
	e.resolveSocial(actions, rewards)
	e.applyAllianceBonus()
	e.applyHealthDecay()

	e.alliances.Validate(e.agents)

	e.steps++
	e.terminated = e.steps >= EpisodeLength
	if e.terminated {
		e.record(events.SimEvent{
			Type:     events.EventTypeEpisodeEnd,
			ActorID:  -1,
			TargetID: -1,
		})
	}

	return &StepResult{
		Observations: e.Observe(),
		Rewards:      rewards,
		Terminated:   e.terminated,
		Truncated:    false,
		Info:         e.stepInfo(),
	}, nil
}

// Steps returns the step counter for the current episode.
func (e *Env) Steps() int {
	return e.steps
}

// NumAgents returns the size of the agent arena.
func (e *Env) NumAgents() int {
	return e.numAgents
}

// Personalities returns the per-agent personality tags in id order. The tags
// are immutable for the episode; decision components use them for biasing.
func (e *Env) Personalities() []agent.Personality {
	out := make([]agent.Personality, len(e.agents))
	for i, a := range e.agents {
		out[i] = a.Personality
	}
	return out
}

// applyAllianceBonus grants every member of every alliance with at least two
// members +0.1 health, once per alliance, in ascending alliance id order.
func (e *Env) applyAllianceBonus() {
	for _, al := range e.alliances.All() {
		if len(al.Members) < 2 {
			continue
		}
		for _, id := range al.Members {
			e.agents[id].GainHealth(0.1)
		}
	}
}

// applyHealthDecay is the last mutation of a step: every agent loses 0.2
// health regardless of what happened in the two phases.
func (e *Env) applyHealthDecay() {
	for _, a := range e.agents {
		a.LoseHealth(0.2)
	}
}

// samplePersonality draws from the fixed categorical table.
func (e *Env) samplePersonality() agent.Personality {
	r := e.rng.Float64()
	switch {
	case r < personalityWeights[0]:
		return agent.Cooperative
	case r < personalityWeights[0]+personalityWeights[1]:
		return agent.Aggressive
	default:
		return agent.Neutral
	}
}

// randomCell draws a uniformly random in-bounds cell.
func (e *Env) randomCell() grid.Cell {
	return grid.Cell{X: e.rng.Intn(e.gridSize), Y: e.rng.Intn(e.gridSize)}
}

// record appends an event to the log, stamping step and episode. Safe with a
// nil log.
func (e *Env) record(evt events.SimEvent) {
	if e.log == nil {
		return
	}
	evt.Timestamp = time.Now()
	evt.Step = e.steps
	evt.Episode = e.episode
	e.log.Append(evt)
}
