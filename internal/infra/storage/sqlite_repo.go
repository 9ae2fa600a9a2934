package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteHistoryRepository implements HistoryRepository for SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Append upserts the summary keyed on (run_id, episode), then prunes the
// history down to the HistoryCap most recent rows.
func (r *SQLiteHistoryRepository) Append(ctx context.Context, summary EpisodeSummary) error {
	scoresJSON, err := json.Marshal(summary.PersonalityScores)
	if err != nil {
		return fmt.Errorf("failed to marshal personality scores: %w", err)
	}

	query := `
		INSERT INTO episodes (run_id, episode, seed, total_reward, survival_rate, avg_score,
			total_food_collected, cooperation_events, theft_events, alliance_formations,
			num_alliances, avg_health, personality_scores, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, episode) DO UPDATE SET
			seed=excluded.seed,
			total_reward=excluded.total_reward,
			survival_rate=excluded.survival_rate,
			avg_score=excluded.avg_score,
			total_food_collected=excluded.total_food_collected,
			cooperation_events=excluded.cooperation_events,
			theft_events=excluded.theft_events,
			alliance_formations=excluded.alliance_formations,
			num_alliances=excluded.num_alliances,
			avg_health=excluded.avg_health,
			personality_scores=excluded.personality_scores,
			created_at=excluded.created_at
	`
	_, err = r.db.ExecContext(ctx, query,
		summary.RunID, summary.Episode, summary.Seed, summary.TotalReward,
		summary.SurvivalRate, summary.AvgScore, summary.TotalFoodCollected,
		summary.CooperationEvents, summary.TheftEvents, summary.AllianceFormations,
		summary.NumAlliances, summary.AvgHealth, string(scoresJSON), summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append episode summary: %w", err)
	}

	prune := `
		DELETE FROM episodes WHERE (run_id, episode) NOT IN (
			SELECT run_id, episode FROM episodes
			ORDER BY created_at DESC, episode DESC
			LIMIT ?
		)
	`
	if _, err := r.db.ExecContext(ctx, prune, HistoryCap); err != nil {
		return fmt.Errorf("failed to prune episode history: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepository) Recent(ctx context.Context, limit int) ([]EpisodeSummary, error) {
	query := `
		SELECT run_id, episode, seed, total_reward, survival_rate, avg_score,
			total_food_collected, cooperation_events, theft_events, alliance_formations,
			num_alliances, avg_health, personality_scores, created_at
		FROM episodes
		ORDER BY created_at DESC, episode DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []EpisodeSummary
	for rows.Next() {
		var s EpisodeSummary
		var scoresJSON string
		err := rows.Scan(
			&s.RunID, &s.Episode, &s.Seed, &s.TotalReward, &s.SurvivalRate, &s.AvgScore,
			&s.TotalFoodCollected, &s.CooperationEvents, &s.TheftEvents, &s.AllianceFormations,
			&s.NumAlliances, &s.AvgHealth, &scoresJSON, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scoresJSON), &s.PersonalityScores); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SQLiteHistoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&n)
	return n, err
}

// ---------------------------------------------------------
// SQLiteEventRepository
// ---------------------------------------------------------

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, record EventRecord) error {
	query := `
		INSERT INTO sim_events (run_id, timestamp, event_type, actor_id, target_id, step, episode, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.RunID, record.Timestamp, record.EventType, record.ActorID,
		record.TargetID, record.Step, record.Episode, record.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) GetByEpisode(ctx context.Context, runID string, episode int) ([]EventRecord, error) {
	query := `
		SELECT run_id, timestamp, event_type, actor_id, target_id, step, episode, payload
		FROM sim_events
		WHERE run_id = ? AND episode = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, runID, episode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var rec EventRecord
		err := rows.Scan(
			&rec.RunID, &rec.Timestamp, &rec.EventType, &rec.ActorID,
			&rec.TargetID, &rec.Step, &rec.Episode, &rec.Payload,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
