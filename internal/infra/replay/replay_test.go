package replay

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ecosim-lab/ecosim/internal/domain/grid"
	"github.com/ecosim-lab/ecosim/internal/engine"
)

func TestReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	header := Header{RunID: "run-test", Episode: 3, Seed: 42}

	frames := []engine.RenderState{
		{
			Agents:        []grid.Cell{{X: 1, Y: 2}, {X: 3, Y: 4}},
			Food:          []grid.Cell{{X: 0, Y: 0}},
			Obstacles:     []grid.Cell{{X: 5, Y: 5}},
			Scores:        []int{0, 1},
			Health:        []float64{99.8, 80},
			Personalities: []int{0, 1},
			Alliances:     []int{-1, -1},
			FoodInventory: []int{0, 1},
			Communication: []int{0, 0},
			Steps:         1,
			SurvivalRate:  0.5,
			AvgHealth:     89.9,
		},
		{
			Agents: []grid.Cell{{X: 1, Y: 3}, {X: 3, Y: 3}},
			Steps:  2,
		},
	}

	w, err := NewWriter(dir, header)
	if err != nil {
		t.Fatal(err)
	}
	for _, fr := range frames {
		if err := w.Append(fr); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "run-test-ep0003.replay.zst")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("replay file not at expected path: %v", err)
	}

	gotHeader, gotFrames, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if gotHeader.Version != formatVersion {
		t.Errorf("version %d, want %d", gotHeader.Version, formatVersion)
	}
	if gotHeader.RunID != "run-test" || gotHeader.Episode != 3 || gotHeader.Seed != 42 {
		t.Errorf("header %+v", gotHeader)
	}
	if len(gotFrames) != 2 {
		t.Fatalf("got %d frames, want 2", len(gotFrames))
	}
	if !reflect.DeepEqual(gotFrames[0].Agents, frames[0].Agents) {
		t.Errorf("frame 0 agents %v, want %v", gotFrames[0].Agents, frames[0].Agents)
	}
	if gotFrames[0].AvgHealth != 89.9 || gotFrames[1].Steps != 2 {
		t.Errorf("frame payload lost in round trip")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.replay.zst")
	if err := os.WriteFile(path, []byte("not a replay"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Read(path); err == nil {
		t.Error("expected error for a non-replay file")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "absent.replay.zst")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestWriterEmptyEpisode(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Header{RunID: "run-empty", Episode: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	header, frames, err := Read(filepath.Join(dir, "run-empty-ep0001.replay.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if header.RunID != "run-empty" {
		t.Errorf("header %+v", header)
	}
	if len(frames) != 0 {
		t.Errorf("got %d frames from an empty replay, want 0", len(frames))
	}
}
