package engine

import (
	"math"
	"testing"

	"github.com/ecosim-lab/ecosim/internal/domain/agent"
	"github.com/ecosim-lab/ecosim/internal/domain/grid"
)

func TestNewEnvValidation(t *testing.T) {
	cases := []struct {
		name                                       string
		gridSize, numAgents, numFood, numObstacles int
		wantErr                                    bool
	}{
		{"valid", 20, 100, 30, 50, false},
		{"zero grid", 0, 10, 5, 5, true},
		{"negative grid", -3, 10, 5, 5, true},
		{"zero agents", 10, 0, 5, 5, true},
		{"negative food", 10, 10, -1, 5, true},
		{"negative obstacles", 10, 10, 5, -1, true},
		{"no food no obstacles", 10, 10, 0, 0, false},
	}
	for _, tc := range cases {
		env, err := NewEnv(tc.gridSize, tc.numAgents, tc.numFood, tc.numObstacles, nil)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got none", tc.name)
			}
			if env != nil {
				t.Errorf("%s: expected nil env on error", tc.name)
			}
		} else if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestResetRepeatable(t *testing.T) {
	env1, _ := NewEnv(20, 50, 30, 40, nil)
	env2, _ := NewEnv(20, 50, 30, 40, nil)

	obs1 := env1.Reset(42)
	obs2 := env2.Reset(42)

	if len(obs1) != 50 || len(obs2) != 50 {
		t.Fatalf("expected 50 observations, got %d and %d", len(obs1), len(obs2))
	}
	for i := range obs1 {
		for j := range obs1[i] {
			if obs1[i][j] != obs2[i][j] {
				t.Fatalf("observation mismatch at agent %d index %d: %v vs %v", i, j, obs1[i][j], obs2[i][j])
			}
		}
	}

	for i := range env1.agents {
		if env1.agents[i].Personality != env2.agents[i].Personality {
			t.Errorf("personality mismatch at agent %d", i)
		}
		if env1.agents[i].Pos != env2.agents[i].Pos {
			t.Errorf("position mismatch at agent %d", i)
		}
	}
}

func TestDeterministicTrajectory(t *testing.T) {
	run := func() ([][]float64, []float64) {
		env, _ := NewEnv(12, 20, 10, 15, nil)
		obs := env.Reset(7)
		var rewards []float64
		for step := 0; step < 50; step++ {
			actions := make([]int, 20)
			for i := range actions {
				actions[i] = (i + step) % NumActions
			}
			res, err := env.Step(actions)
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			obs = res.Observations
			rewards = res.Rewards
		}
		return obs, rewards
	}

	obsA, rewA := run()
	obsB, rewB := run()
	for i := range obsA {
		for j := range obsA[i] {
			if obsA[i][j] != obsB[i][j] {
				t.Fatalf("trajectory diverged at agent %d obs index %d", i, j)
			}
		}
		if rewA[i] != rewB[i] {
			t.Fatalf("reward diverged at agent %d: %v vs %v", i, rewA[i], rewB[i])
		}
	}
}

func TestStepValidation(t *testing.T) {
	env, _ := NewEnv(10, 3, 2, 2, nil)

	if _, err := env.Step([]int{0, 0, 0}); err == nil {
		t.Error("expected error for Step before Reset")
	}

	env.Reset(1)
	before := env.Snapshot()

	if _, err := env.Step([]int{0, 0}); err == nil {
		t.Error("expected error for wrong-length action vector")
	}
	if _, err := env.Step([]int{0, 0, 9}); err == nil {
		t.Error("expected error for out-of-range action")
	}
	if _, err := env.Step([]int{0, -1, 0}); err == nil {
		t.Error("expected error for negative action")
	}

	// Validation failures must not mutate anything.
	after := env.Snapshot()
	if before.Steps != after.Steps {
		t.Error("failed Step advanced the step counter")
	}
	for i := range before.Agents {
		if before.Agents[i] != after.Agents[i] || before.Health[i] != after.Health[i] {
			t.Errorf("failed Step mutated agent %d", i)
		}
	}
}

func TestResourceCountConstant(t *testing.T) {
	env, _ := NewEnv(8, 10, 12, 5, nil)
	env.Reset(3)

	for step := 0; step < 100; step++ {
		actions := make([]int, 10)
		for i := range actions {
			actions[i] = (i + step) % 5 // movement only, maximizes foraging
		}
		if _, err := env.Step(actions); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if env.FoodCount() != 12 {
			t.Fatalf("step %d: food count %d, want 12", step, env.FoodCount())
		}
	}
}

func TestBoundaryClamping(t *testing.T) {
	env := newTestEnv(t, 5, []agent.Personality{agent.Neutral}, []grid.Cell{{X: 0, Y: 0}})

	// Push into the top-left corner repeatedly.
	for i := 0; i < 3; i++ {
		for _, a := range []int{ActionUp, ActionLeft} {
			if _, err := env.Step([]int{a}); err != nil {
				t.Fatal(err)
			}
			pos := env.agents[0].Pos
			if pos.X < 0 || pos.Y < 0 || pos.X >= 5 || pos.Y >= 5 {
				t.Fatalf("agent escaped grid at %v", pos)
			}
		}
	}
	if env.agents[0].Pos != (grid.Cell{X: 0, Y: 0}) {
		t.Errorf("expected corner position, got %v", env.agents[0].Pos)
	}

	// And into the bottom-right corner.
	for i := 0; i < 8; i++ {
		for _, a := range []int{ActionDown, ActionRight} {
			if _, err := env.Step([]int{a}); err != nil {
				t.Fatal(err)
			}
		}
	}
	if env.agents[0].Pos != (grid.Cell{X: 4, Y: 4}) {
		t.Errorf("expected opposite corner, got %v", env.agents[0].Pos)
	}
}

func TestObstacleCollision(t *testing.T) {
	env := newTestEnv(t, 5, []agent.Personality{agent.Neutral}, []grid.Cell{{X: 1, Y: 1}})
	env.obstacles[grid.Cell{X: 2, Y: 1}] = struct{}{}

	res, err := env.Step([]int{ActionRight})
	if err != nil {
		t.Fatal(err)
	}
	if env.agents[0].Pos != (grid.Cell{X: 1, Y: 1}) {
		t.Errorf("agent moved into obstacle, pos %v", env.agents[0].Pos)
	}
	if res.Rewards[0] != -5 {
		t.Errorf("collision reward %v, want -5", res.Rewards[0])
	}
	// 100 - 2 collision - 0.2 decay.
	if math.Abs(env.agents[0].Health-97.8) > 1e-9 {
		t.Errorf("health %v, want 97.8", env.agents[0].Health)
	}
}

func TestForagingRewritesReward(t *testing.T) {
	env := newTestEnv(t, 5, []agent.Personality{agent.Neutral}, []grid.Cell{{X: 2, Y: 2}})
	env.food = []grid.Cell{{X: 2, Y: 2}, {X: 2, Y: 2}} // duplicate units on one cell

	res, err := env.Step([]int{ActionStay})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rewards[0] != 15 {
		t.Errorf("forage reward %v, want 15", res.Rewards[0])
	}
	if env.agents[0].FoodInventory != 1 || env.agents[0].Score != 1 {
		t.Errorf("inventory=%d score=%d, want 1/1", env.agents[0].FoodInventory, env.agents[0].Score)
	}

	// Exactly one of the duplicate units was consumed; the respawned cell
	// keeps the total at 2.
	if env.FoodCount() != 2 {
		t.Fatalf("food count %d, want 2", env.FoodCount())
	}
	remaining := 0
	for _, f := range env.food {
		if f == (grid.Cell{X: 2, Y: 2}) {
			remaining++
		}
	}
	if remaining < 1 {
		t.Error("duplicate food unit was not preserved")
	}
}

func TestEpisodeTermination(t *testing.T) {
	env := newTestEnv(t, 5, []agent.Personality{agent.Neutral}, []grid.Cell{{X: 2, Y: 2}})

	var lastTerminated bool
	for step := 0; step < EpisodeLength; step++ {
		res, err := env.Step([]int{ActionStay})
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if res.Truncated {
			t.Fatal("truncated must always be false")
		}
		lastTerminated = res.Terminated
	}
	if !lastTerminated {
		t.Fatal("episode did not terminate at the final step")
	}
	if _, err := env.Step([]int{ActionStay}); err != ErrEpisodeOver {
		t.Fatalf("expected ErrEpisodeOver after terminal step, got %v", err)
	}

	// Reset starts a fresh episode.
	env.Reset(9)
	if _, err := env.Step(make([]int, 1)); err != nil {
		t.Fatalf("step after reset failed: %v", err)
	}
}

func TestHealthBounds(t *testing.T) {
	env, _ := NewEnv(6, 8, 4, 10, nil)
	env.Reset(11)

	for step := 0; step < 200; step++ {
		actions := make([]int, 8)
		for i := range actions {
			actions[i] = (step + i) % NumActions
		}
		if _, err := env.Step(actions); err != nil {
			t.Fatal(err)
		}
		for _, a := range env.agents {
			if a.Health < 0 || a.Health > 100 {
				t.Fatalf("health out of bounds: %v", a.Health)
			}
			if a.FoodInventory < 0 || a.Score < 0 {
				t.Fatalf("negative inventory or score: %d/%d", a.FoodInventory, a.Score)
			}
		}
	}
}

// newTestEnv builds a deterministic fixture with explicit personalities and
// positions, no food and no obstacles. Callers add food or obstacles as the
// scenario needs.
func newTestEnv(t *testing.T, gridSize int, personalities []agent.Personality, positions []grid.Cell) *Env {
	t.Helper()
	if len(personalities) != len(positions) {
		t.Fatal("fixture mismatch: personalities and positions differ in length")
	}
	env, err := NewEnv(gridSize, len(personalities), 0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset(1)
	for i := range personalities {
		env.agents[i].Personality = personalities[i]
		env.agents[i].Pos = positions[i]
	}
	env.food = nil
	env.obstacles = make(map[grid.Cell]struct{})
	return env
}
