// Package storage provides the persistence layer for the simulation server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// EpisodeSummary is the persisted record of one completed episode.
type EpisodeSummary struct {
	RunID              string             `json:"run_id" db:"run_id"`
	Episode            int                `json:"episode" db:"episode"`
	Seed               int64              `json:"seed" db:"seed"`
	TotalReward        float64            `json:"total_reward" db:"total_reward"`
	SurvivalRate       float64            `json:"survival_rate" db:"survival_rate"`
	AvgScore           float64            `json:"avg_score" db:"avg_score"`
	TotalFoodCollected int                `json:"total_food_collected" db:"total_food_collected"`
	CooperationEvents  int                `json:"cooperation_events" db:"cooperation_events"`
	TheftEvents        int                `json:"theft_events" db:"theft_events"`
	AllianceFormations int                `json:"alliance_formations" db:"alliance_formations"`
	NumAlliances       int                `json:"num_alliances" db:"num_alliances"`
	AvgHealth          float64            `json:"avg_health" db:"avg_health"`
	PersonalityScores  map[string]float64 `json:"personality_scores" db:"personality_scores"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

// HistoryCap is the number of most recent episode summaries retained.
const HistoryCap = 100

// HistoryRepository defines the interface for the bounded episode history.
// Append is idempotent per (run id, episode): re-appending the same episode
// overwrites rather than duplicates.
type HistoryRepository interface {
	// Append adds an episode summary, then prunes the history to HistoryCap.
	Append(ctx context.Context, summary EpisodeSummary) error

	// Recent retrieves up to limit summaries, newest first.
	Recent(ctx context.Context, limit int) ([]EpisodeSummary, error)

	// Count returns the number of retained summaries.
	Count(ctx context.Context) (int, error)
}

// EventRecord mirrors the in-memory simulation event for persistence.
type EventRecord struct {
	RunID     string    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	EventType string    `json:"event_type" db:"event_type"`
	ActorID   int       `json:"actor_id" db:"actor_id"`
	TargetID  int       `json:"target_id" db:"target_id"`
	Step      int       `json:"step" db:"step"`
	Episode   int       `json:"episode" db:"episode"`
	Payload   string    `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the ledger.
	Append(ctx context.Context, record EventRecord) error

	// GetByEpisode retrieves all events for one episode in insertion order.
	GetByEpisode(ctx context.Context, runID string, episode int) ([]EventRecord, error)
}
