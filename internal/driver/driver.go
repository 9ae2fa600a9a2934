// Package driver orchestrates episodes: it owns the reset/step alternation,
// feeds observations to the decision policy, and hands world state to the
// collaborators (telemetry sink, episode history, replay recorder). Failures
// in any collaborator are boundary concerns and never reach the engine.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecosim-lab/ecosim/internal/engine"
	"github.com/ecosim-lab/ecosim/internal/infra/replay"
	"github.com/ecosim-lab/ecosim/internal/infra/storage"
	"github.com/ecosim-lab/ecosim/internal/network"
	"github.com/ecosim-lab/ecosim/internal/platform/logger"
	"github.com/ecosim-lab/ecosim/internal/platform/metrics"
	"github.com/ecosim-lab/ecosim/internal/policy"
)

// Sink receives world snapshots for display. Implementations must be cheap
// to call; the driver drops errors after logging them.
type Sink interface {
	BroadcastSnapshot(frame network.SnapshotFrame) error
}

// Options tunes one run of consecutive episodes.
type Options struct {
	Episodes    int
	Seed        int64
	StreamEvery int    // snapshot cadence in steps
	ReplayDir   string // empty disables replay recording
}

// Runner drives the environment through a fixed number of episodes.
type Runner struct {
	env     *engine.Env
	policy  policy.Policy
	sink    Sink                      // optional
	history storage.HistoryRepository // optional
	logger  *logger.Logger
	opts    Options
	runID   string
}

// New wires a runner. Sink and history may be nil for headless runs.
func New(env *engine.Env, pol policy.Policy, sink Sink, history storage.HistoryRepository, log *logger.Logger, opts Options) *Runner {
	if opts.StreamEvery <= 0 {
		opts.StreamEvery = 10
	}
	return &Runner{
		env:     env,
		policy:  pol,
		sink:    sink,
		history: history,
		logger:  log,
		opts:    opts,
		runID:   uuid.NewString(),
	}
}

// RunID identifies this run in persisted summaries and replay files.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes every episode in sequence. It returns early only on context
// cancellation; collaborator failures are logged and swallowed.
func (r *Runner) Run(ctx context.Context) ([]storage.EpisodeSummary, error) {
	summaries := make([]storage.EpisodeSummary, 0, r.opts.Episodes)
	for ep := 1; ep <= r.opts.Episodes; ep++ {
		summary, err := r.runEpisode(ctx, ep)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
		r.persist(ctx, summary)
	}
	return summaries, nil
}

// runEpisode resets the world and steps it to the terminal state.
func (r *Runner) runEpisode(ctx context.Context, episode int) (storage.EpisodeSummary, error) {
	seed := r.opts.Seed + int64(episode-1)
	observations := r.env.Reset(seed)
	personalities := r.env.Personalities()

	recorder := r.openRecorder(episode, seed)
	if recorder != nil {
		defer r.closeRecorder(recorder)
	}

	var totalReward float64
	var info engine.StepInfo

	for {
		select {
		case <-ctx.Done():
			return storage.EpisodeSummary{}, ctx.Err()
		default:
		}

		actions := r.policy.SelectActions(observations, personalities)

		start := time.Now()
		result, err := r.env.Step(actions)
		if err != nil {
			// The driver is the only caller; a step error here is a bug.
			return storage.EpisodeSummary{}, fmt.Errorf("driver: step failed: %w", err)
		}
		metrics.Get().RecordStep(time.Since(start))

		for _, reward := range result.Rewards {
			totalReward += reward
		}
		observations = result.Observations
		info = result.Info

		if r.env.Steps()%r.opts.StreamEvery == 0 {
			r.stream(episode)
		}
		if recorder != nil {
			if err := recorder.Append(r.env.Snapshot()); err != nil {
				r.logger.Warn("Replay frame dropped: " + err.Error())
			}
		}

		if result.Terminated {
			break
		}
	}

	r.logger.Event("EPISODE_COMPLETE", r.runID,
		fmt.Sprintf("episode=%d survival=%.2f coop=%d thefts=%d alliances=%d",
			episode, info.SurvivalRate, info.CooperationEvents, info.TheftEvents, info.NumAlliances))

	return storage.EpisodeSummary{
		RunID:              r.runID,
		Episode:            episode,
		Seed:               seed,
		TotalReward:        totalReward,
		SurvivalRate:       info.SurvivalRate,
		AvgScore:           info.AvgScore,
		TotalFoodCollected: info.TotalFoodCollected,
		CooperationEvents:  info.CooperationEvents,
		TheftEvents:        info.TheftEvents,
		AllianceFormations: info.AllianceFormations,
		NumAlliances:       info.NumAlliances,
		AvgHealth:          info.AvgHealth,
		PersonalityScores:  info.PersonalityScores,
		CreatedAt:          time.Now(),
	}, nil
}

// stream pushes one snapshot frame to the sink, fire-and-forget.
func (r *Runner) stream(episode int) {
	if r.sink == nil {
		return
	}
	frame := network.SnapshotFrame{
		RunID:    r.runID,
		Episode:  episode,
		Step:     r.env.Steps(),
		MaxSteps: engine.EpisodeLength,
		State:    r.env.Snapshot(),
	}
	if err := r.sink.BroadcastSnapshot(frame); err != nil {
		r.logger.Warn("Snapshot broadcast failed: " + err.Error())
	}
}

// persist appends the episode summary to the bounded history.
func (r *Runner) persist(ctx context.Context, summary storage.EpisodeSummary) {
	if r.history == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.history.Append(writeCtx, summary)
	metrics.Get().RecordEpisode(err)
	if err != nil {
		r.logger.Error("Failed to persist episode summary: " + err.Error())
	}
}

func (r *Runner) openRecorder(episode int, seed int64) *replay.Writer {
	if r.opts.ReplayDir == "" {
		return nil
	}
	w, err := replay.NewWriter(r.opts.ReplayDir, replay.Header{
		RunID:   r.runID,
		Episode: episode,
		Seed:    seed,
	})
	if err != nil {
		r.logger.Warn("Replay recording disabled for episode: " + err.Error())
		return nil
	}
	return w
}

func (r *Runner) closeRecorder(w *replay.Writer) {
	if err := w.Close(); err != nil {
		r.logger.Warn("Replay file close failed: " + err.Error())
	}
}
