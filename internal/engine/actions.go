package engine

import "github.com/ecosim-lab/ecosim/internal/domain/grid"

// Action codes. 0-4 are movement, 5-8 are social. Movement codes are no-ops
// in the social phase and social codes are no-ops in the movement phase.
const (
	ActionStay = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionShare
	ActionSteal
	ActionFormAlliance
	ActionSignalHelp
)

// NumActions is the size of the discrete action space.
const NumActions = ActionSignalHelp + 1

// moveDeltas maps movement action codes to grid deltas. Y grows downward.
var moveDeltas = [5]grid.Cell{
	ActionStay:  {X: 0, Y: 0},
	ActionUp:    {X: 0, Y: -1},
	ActionDown:  {X: 0, Y: 1},
	ActionLeft:  {X: -1, Y: 0},
	ActionRight: {X: 1, Y: 0},
}
