// Package config loads the server configuration from YAML with explicit
// defaults and validation. A config that fails validation is never used.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the simulation server.
type Config struct {
	// World dimensions
	GridSize     int `yaml:"grid_size"`
	NumAgents    int `yaml:"num_agents"`
	NumFood      int `yaml:"num_food"`
	NumObstacles int `yaml:"num_obstacles"`

	// Run parameters
	Episodes    int   `yaml:"episodes"`
	Seed        int64 `yaml:"seed"`
	StreamEvery int   `yaml:"stream_every"` // snapshot broadcast cadence in steps

	// Infrastructure
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	ReplayDir  string `yaml:"replay_dir"` // empty disables replay recording
}

// Load reads the config file at path, falling back to defaults when path is
// empty.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("ecosim.yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("ecosim.yaml: %w", err)
	}
	return cfg, nil
}

// Defaults mirrors the reference deployment: a 20x20 grid with 100 agents,
// 30 food cells and 50 obstacles, 50 episodes per run.
func Defaults() Config {
	return Config{
		GridSize:     20,
		NumAgents:    100,
		NumFood:      30,
		NumObstacles: 50,
		Episodes:     50,
		Seed:         1,
		StreamEvery:  10,
		ListenAddr:   ":8080",
		DBPath:       "ecosim.db",
		ReplayDir:    "",
	}
}

// Validate rejects dimensions and counts the engine would refuse anyway, so
// the failure surfaces at startup instead of mid-run.
func (c Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", c.GridSize)
	}
	if c.NumAgents <= 0 {
		return fmt.Errorf("num_agents must be positive, got %d", c.NumAgents)
	}
	if c.NumFood < 0 {
		return fmt.Errorf("num_food must be non-negative, got %d", c.NumFood)
	}
	if c.NumObstacles < 0 {
		return fmt.Errorf("num_obstacles must be non-negative, got %d", c.NumObstacles)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if c.StreamEvery <= 0 {
		return fmt.Errorf("stream_every must be positive, got %d", c.StreamEvery)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	return nil
}
