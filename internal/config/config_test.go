package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Defaults() {
		t.Errorf("got %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecosim.yaml")
	body := `
grid_size: 12
num_agents: 8
episodes: 3
seed: 99
listen_addr: ":9090"
replay_dir: "replays"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GridSize != 12 || cfg.NumAgents != 8 || cfg.Episodes != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Seed != 99 || cfg.ListenAddr != ":9090" || cfg.ReplayDir != "replays" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.NumFood != 30 || cfg.NumObstacles != 50 || cfg.StreamEvery != 10 {
		t.Errorf("defaults lost for unset keys: %+v", cfg)
	}
	if cfg.DBPath != "ecosim.db" {
		t.Errorf("db_path default lost: %q", cfg.DBPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name, body string
	}{
		{"zero grid", "grid_size: 0"},
		{"negative agents", "num_agents: -1"},
		{"negative food", "num_food: -2"},
		{"zero episodes", "episodes: 0"},
		{"zero cadence", "stream_every: 0"},
		{"blank listen addr", `listen_addr: "  "`},
		{"blank db path", `db_path: ""`},
		{"malformed yaml", "grid_size: [oops"},
	}
	dir := t.TempDir()
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".yaml")
		if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
