// Package main - episode-runner
// Headless batch runner: executes a fixed number of episodes without the
// HTTP/WebSocket surface and prints a per-episode console report. Can also
// inspect a previously recorded replay file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ecosim-lab/ecosim/internal/config"
	"github.com/ecosim-lab/ecosim/internal/driver"
	"github.com/ecosim-lab/ecosim/internal/engine"
	"github.com/ecosim-lab/ecosim/internal/events"
	"github.com/ecosim-lab/ecosim/internal/infra/replay"
	"github.com/ecosim-lab/ecosim/internal/infra/storage"
	"github.com/ecosim-lab/ecosim/internal/platform/logger"
	"github.com/ecosim-lab/ecosim/internal/policy"
)

func main() {
	configPath := flag.String("config", "", "path to ecosim.yaml (empty = defaults)")
	episodes := flag.Int("episodes", 0, "override episode count")
	replayPath := flag.String("replay", "", "inspect a replay file instead of running")
	flag.Parse()

	if *replayPath != "" {
		inspectReplay(*replayPath)
		return
	}

	appLogger := logger.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Error("Failed to load config: " + err.Error())
		os.Exit(1)
	}
	if *episodes > 0 {
		cfg.Episodes = *episodes
	}

	eventLog := events.NewLog(nil)
	env, err := engine.NewEnv(cfg.GridSize, cfg.NumAgents, cfg.NumFood, cfg.NumObstacles, eventLog)
	if err != nil {
		appLogger.Error("Failed to construct environment: " + err.Error())
		os.Exit(1)
	}

	pol := policy.NewHeuristic(cfg.Seed)
	runner := driver.New(env, pol, nil, nil, appLogger, driver.Options{
		Episodes:    cfg.Episodes,
		Seed:        cfg.Seed,
		StreamEvery: cfg.StreamEvery,
		ReplayDir:   cfg.ReplayDir,
	})

	fmt.Println("ECOSIM EPISODE RUNNER")
	fmt.Println("=====================")
	fmt.Printf("Run %s | grid %dx%d | %d agents | %d food | %d obstacles | %d episodes\n",
		runner.RunID(), cfg.GridSize, cfg.GridSize, cfg.NumAgents, cfg.NumFood, cfg.NumObstacles, cfg.Episodes)

	summaries, err := runner.Run(context.Background())
	if err != nil {
		appLogger.Error("Run failed: " + err.Error())
		os.Exit(1)
	}

	for _, s := range summaries {
		printSummary(s)
	}
	fmt.Printf("\nRun complete: %d episodes\n", len(summaries))
}

func printSummary(s storage.EpisodeSummary) {
	fmt.Printf("\nEPISODE %d (seed %d)\n", s.Episode, s.Seed)
	fmt.Printf("  Survival rate:   %.2f%%\n", s.SurvivalRate*100)
	fmt.Printf("  Food collected:  %d\n", s.TotalFoodCollected)
	fmt.Printf("  Cooperations:    %d\n", s.CooperationEvents)
	fmt.Printf("  Thefts:          %d\n", s.TheftEvents)
	fmt.Printf("  Alliances:       %d (formed %d)\n", s.NumAlliances, s.AllianceFormations)
	fmt.Printf("  Avg health:      %.1f\n", s.AvgHealth)
	fmt.Println("  Personality performance:")
	for _, p := range []string{"cooperative", "aggressive", "neutral"} {
		fmt.Printf("    %-12s %.2f\n", p, s.PersonalityScores[p])
	}
}

func inspectReplay(path string) {
	header, frames, err := replay.Read(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("Replay %s episode %d (seed %d): %d frames\n",
		header.RunID, header.Episode, header.Seed, len(frames))
	if len(frames) > 0 {
		last := frames[len(frames)-1]
		fmt.Printf("Final step %d: survival %.2f%%, coop %d, thefts %d, alliances %d, avg health %.1f\n",
			last.Steps, last.SurvivalRate*100, last.CooperationEvents,
			last.TheftEvents, last.NumAlliances, last.AvgHealth)
	}
}
