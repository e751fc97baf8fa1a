package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/boomero/internal/game"
)

// ErrCorruptSnapshot reports a saved board that does not describe a valid game.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// SaveSnapshot replaces the saved board with st.
func (s *Store) SaveSnapshot(ctx context.Context, st game.State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot (id, player1_score, player2_score, current_player, current_dart, points_this_turn, game_over, saved_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			player1_score = excluded.player1_score,
			player2_score = excluded.player2_score,
			current_player = excluded.current_player,
			current_dart = excluded.current_dart,
			points_this_turn = excluded.points_this_turn,
			game_over = excluded.game_over,
			saved_at = excluded.saved_at`,
		st.Player1Score,
		st.Player2Score,
		int(st.CurrentPlayer),
		st.CurrentDart,
		st.PointsThisTurn,
		boolInt(st.GameOver),
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	for _, stmt := range []string{`DELETE FROM snapshot_matrix`, `DELETE FROM snapshot_darts`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
	}

	for row := 0; row < game.Rows; row++ {
		p1, p2 := st.Matrix[row][0], st.Matrix[row][1]
		if p1 == 0 && p2 == 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_matrix (row_index, player1_hits, player2_hits) VALUES (?, ?, ?)`,
			row, p1, p2,
		); err != nil {
			return fmt.Errorf("failed to save matrix row %d: %w", row, err)
		}
	}

	for slot, d := range st.Darts {
		if d == nil {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_darts (slot, kind, value, valid, scored_as_category, scored_as_circle)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			slot, int(d.Kind), d.Value, boolInt(d.Valid), boolInt(d.ScoredAsCategory), boolInt(d.ScoredAsCircle),
		); err != nil {
			return fmt.Errorf("failed to save dart %d: %w", slot, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the saved board. ok is false when nothing was saved yet.
func (s *Store) LoadSnapshot(ctx context.Context) (st game.State, ok bool, err error) {
	var player, gameOver int
	err = s.db.QueryRowContext(ctx,
		`SELECT player1_score, player2_score, current_player, current_dart, points_this_turn, game_over
		 FROM snapshot WHERE id = 1`,
	).Scan(&st.Player1Score, &st.Player2Score, &player, &st.CurrentDart, &st.PointsThisTurn, &gameOver)
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, false, nil
	}
	if err != nil {
		return game.State{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if player != int(game.Player1) && player != int(game.Player2) {
		return game.State{}, false, fmt.Errorf("%w: current player %d", ErrCorruptSnapshot, player)
	}
	if st.CurrentDart < 0 || st.CurrentDart > game.DartsPerTurn {
		return game.State{}, false, fmt.Errorf("%w: current dart %d", ErrCorruptSnapshot, st.CurrentDart)
	}
	st.CurrentPlayer = game.Player(player)
	st.GameOver = gameOver != 0

	if err := s.loadMatrix(ctx, &st.Matrix); err != nil {
		return game.State{}, false, err
	}
	if err := s.loadDarts(ctx, &st.Darts); err != nil {
		return game.State{}, false, err
	}
	return st, true, nil
}

func (s *Store) loadMatrix(ctx context.Context, m *game.Matrix) error {
	rows, err := s.db.QueryContext(ctx, `SELECT row_index, player1_hits, player2_hits FROM snapshot_matrix`)
	if err != nil {
		return fmt.Errorf("failed to load matrix: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var row, p1, p2 int
		if err := rows.Scan(&row, &p1, &p2); err != nil {
			return fmt.Errorf("failed to load matrix: %w", err)
		}
		if row < 0 || row >= game.Rows || p1 < 0 || p2 < 0 {
			return fmt.Errorf("%w: matrix row %d (%d, %d)", ErrCorruptSnapshot, row, p1, p2)
		}
		m[row] = [2]int{p1, p2}
	}
	return rows.Err()
}

func (s *Store) loadDarts(ctx context.Context, darts *[game.DartsPerTurn]*game.Dart) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, kind, value, valid, scored_as_category, scored_as_circle FROM snapshot_darts`)
	if err != nil {
		return fmt.Errorf("failed to load darts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var slot, kind, valid, category, circle int
		d := &game.Dart{}
		if err := rows.Scan(&slot, &kind, &d.Value, &valid, &category, &circle); err != nil {
			return fmt.Errorf("failed to load darts: %w", err)
		}
		if slot < 0 || slot >= game.DartsPerTurn || kind < int(game.Single) || kind > int(game.Miss) {
			return fmt.Errorf("%w: dart slot %d kind %d", ErrCorruptSnapshot, slot, kind)
		}
		d.Kind = game.Kind(kind)
		d.Valid = valid != 0
		d.ScoredAsCategory = category != 0
		d.ScoredAsCircle = circle != 0
		darts[slot] = d
	}
	return rows.Err()
}
