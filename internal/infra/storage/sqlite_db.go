package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the necessary
// schemas for the episode history and the simulation event ledger.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL,
			episode INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			total_reward REAL NOT NULL DEFAULT 0.0,
			survival_rate REAL NOT NULL,
			avg_score REAL NOT NULL,
			total_food_collected INTEGER NOT NULL,
			cooperation_events INTEGER NOT NULL,
			theft_events INTEGER NOT NULL,
			alliance_formations INTEGER NOT NULL,
			num_alliances INTEGER NOT NULL,
			avg_health REAL NOT NULL,
			personality_scores TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (run_id, episode)
		);`,
		`CREATE TABLE IF NOT EXISTS sim_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			actor_id INTEGER NOT NULL,
			target_id INTEGER NOT NULL,
			step INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			payload TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_created ON episodes(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_episode ON sim_events(run_id, episode);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_type ON sim_events(event_type);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
