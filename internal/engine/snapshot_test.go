package engine

import (
	"reflect"
	"testing"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/domain/grid"
)

func TestSnapshotCopiesState(t *testing.T) {
	env := newTestEnv(t, 6,
		[]agent.Personality{agent.Cooperative, agent.Aggressive},
		[]grid.Cell{{X: 1, Y: 1}, {X: 4, Y: 4}})
	env.food = []grid.Cell{{X: 2, Y: 2}}
	env.obstacles[grid.Cell{X: 3, Y: 3}] = struct{}{}
	env.agents[0].Score = 5
	env.agents[0].FoodInventory = 1

	s := env.Snapshot()

	if !reflect.DeepEqual(s.Agents, []grid.Cell{{X: 1, Y: 1}, {X: 4, Y: 4}}) {
		t.Errorf("agent positions %v", s.Agents)
	}
	if !reflect.DeepEqual(s.Food, []grid.Cell{{X: 2, Y: 2}}) {
		t.Errorf("food %v", s.Food)
	}
	if !reflect.DeepEqual(s.Obstacles, []grid.Cell{{X: 3, Y: 3}}) {
		t.Errorf("obstacles %v", s.Obstacles)
	}
	if s.Scores[0] != 5 || s.FoodInventory[0] != 1 {
		t.Errorf("scores %v inventory %v", s.Scores, s.FoodInventory)
	}
	if s.Personalities[0] != int(agent.Cooperative) || s.Personalities[1] != int(agent.Aggressive) {
		t.Errorf("personalities %v", s.Personalities)
	}
	if s.Alliances[0] != agent.NoAlliance {
		t.Errorf("alliance id %d, want %d", s.Alliances[0], agent.NoAlliance)
	}
	if s.SurvivalRate != 0.5 {
		t.Errorf("survival rate %v, want 0.5", s.SurvivalRate)
	}

	// The snapshot is a copy: mutating it must not touch the engine.
	s.Agents[0] = grid.Cell{X: 5, Y: 5}
	s.Scores[0] = 99
	if env.agents[0].Pos != (grid.Cell{X: 1, Y: 1}) || env.agents[0].Score != 5 {
		t.Error("snapshot aliases engine state")
	}
}

func TestSnapshotDeterministicObstacleOrder(t *testing.T) {
	env, _ := NewEnv(10, 5, 5, 25, nil)
	env.Reset(17)

	a := env.Snapshot()
	b := env.Snapshot()
	if !reflect.DeepEqual(a.Obstacles, b.Obstacles) {
		t.Error("obstacle order differs between snapshots of the same state")
	}
	for i := 1; i < len(a.Obstacles); i++ {
		prev, cur := a.Obstacles[i-1], a.Obstacles[i]
		if cur.X < prev.X || (cur.X == prev.X && cur.Y <= prev.Y) {
			t.Fatalf("obstacles not strictly ordered at %d: %v then %v", i, prev, cur)
		}
	}
}
