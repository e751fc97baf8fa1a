// Package store handles SQLite persistence.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the saved board and game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			player1_score INTEGER NOT NULL,
			player2_score INTEGER NOT NULL,
			current_player INTEGER NOT NULL,
			current_dart INTEGER NOT NULL,
			points_this_turn INTEGER NOT NULL,
			game_over INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot_matrix (
			row_index INTEGER PRIMARY KEY,
			player1_hits INTEGER NOT NULL,
			player2_hits INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot_darts (
			slot INTEGER PRIMARY KEY,
			kind INTEGER NOT NULL,
			value INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			scored_as_category INTEGER NOT NULL,
			scored_as_circle INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			status TEXT NOT NULL,
			player1_score INTEGER NOT NULL DEFAULT 0,
			player2_score INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY,
			game_id INTEGER NOT NULL,
			player INTEGER NOT NULL,
			points INTEGER NOT NULL,
			marks INTEGER NOT NULL,
			darts TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_started_at ON games(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_game_id ON turns(game_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
