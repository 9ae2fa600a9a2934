// Package grid defines the spatial primitives of the ecosystem world.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package grid

import "math"

// Cell is an integer grid coordinate. Cells are comparable and can be used
// as map keys (obstacle sets) or held in slices (food cells, which may repeat).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo returns the Euclidean distance between two cells.
func (c Cell) DistanceTo(o Cell) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
