package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/boomero/internal/model"
)

// RecordTurn appends a confirmed turn to the open game, opening one first
// when none is open. It returns the game id the turn was filed under.
func (s *Store) RecordTurn(ctx context.Context, rec model.TurnRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin turn: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	at := rec.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}
	stamp := at.UTC().Format(time.RFC3339Nano)

	id, err = openGameID(ctx, tx)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		res, ierr := tx.ExecContext(ctx,
			`INSERT INTO games (started_at, status) VALUES (?, ?)`, stamp, string(model.GameOpen))
		if ierr != nil {
			err = fmt.Errorf("failed to open game: %w", ierr)
			return 0, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO turns (game_id, player, points, marks, darts, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.Player, rec.Points, rec.Marks, rec.Darts, stamp,
	); err != nil {
		return 0, fmt.Errorf("failed to record turn: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit turn: %w", err)
	}
	return id, nil
}

// EndGame closes the open game with result. It is a no-op when no game is open.
func (s *Store) EndGame(ctx context.Context, result model.GameResult) error {
	at := result.EndedAt
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE games SET ended_at = ?, status = ?, player1_score = ?, player2_score = ?, winner = ?
		 WHERE status = ?`,
		at.UTC().Format(time.RFC3339Nano),
		string(result.Status),
		result.Player1Score,
		result.Player2Score,
		result.Winner,
		string(model.GameOpen),
	); err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}
	return nil
}

func openGameID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM games WHERE status = ? ORDER BY id DESC LIMIT 1`, string(model.GameOpen),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find open game: %w", err)
	}
	return id, nil
}

// ListGames returns recorded games, oldest first, filtered by cfg. Last keeps
// only the most recent games.
func (s *Store) ListGames(ctx context.Context, cfg model.StatsConfig) ([]model.GameRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "g.started_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
		SELECT g.id, g.started_at, g.ended_at, g.status, g.player1_score, g.player2_score, g.winner,
			(SELECT COUNT(*) FROM turns t WHERE t.game_id = g.id) AS turns
		FROM games g
		WHERE %s
		ORDER BY g.started_at DESC, g.id DESC
		LIMIT ?
	) ORDER BY started_at ASC, id ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameRecord
	for rows.Next() {
		var rec model.GameRecord
		var startedAt, status string
		var endedAt sql.NullString
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &status, &rec.Player1Score, &rec.Player2Score, &rec.Winner, &rec.Turns); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			parsed, err := time.Parse(time.RFC3339Nano, endedAt.String)
			if err != nil {
				return nil, err
			}
			rec.EndedAt = &parsed
		}
		rec.Status = model.GameStatus(status)
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// ListTurns returns the turns of the given games in the order they were played.
func (s *Store) ListTurns(ctx context.Context, gameIDs []int64) ([]model.TurnRecord, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(gameIDs))
	args := make([]any, len(gameIDs))
	for i, id := range gameIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT game_id, player, points, marks, darts, recorded_at
		FROM turns
		WHERE game_id IN (%s)
		ORDER BY id ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var turns []model.TurnRecord
	for rows.Next() {
		var rec model.TurnRecord
		var recordedAt string
		if err := rows.Scan(&rec.GameID, &rec.Player, &rec.Points, &rec.Marks, &rec.Darts, &recordedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		rec.RecordedAt = parsed
		turns = append(turns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}
