package grid

import "testing"

func TestDistanceTo(t *testing.T) {
	cases := []struct {
		a, b Cell
		want float64
	}{
		{Cell{0, 0}, Cell{0, 0}, 0},
		{Cell{0, 0}, Cell{3, 4}, 5},
		{Cell{3, 4}, Cell{0, 0}, 5},
		{Cell{2, 2}, Cell{2, 5}, 3},
		{Cell{-1, -1}, Cell{2, 3}, 5},
	}
	for _, tc := range cases {
		if got := tc.a.DistanceTo(tc.b); got != tc.want {
			t.Errorf("DistanceTo(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 9, 5},
		{-1, 0, 9, 0},
		{10, 0, 9, 9},
		{0, 0, 9, 0},
		{9, 0, 9, 9},
	}
	for _, tc := range cases {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}
