// Package model defines shared data structures.
package model

import "time"

// Config defines play settings.
type Config struct {
	Player1        string
	Player2        string
	ShowLowNumbers bool
	LogLevel       string
}

// Name returns the display name for player 1 or 2.
func (c Config) Name(player int) string {
	if player == 2 {
		return c.Player2
	}
	return c.Player1
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Since *time.Time
	Last  int
}

// GameStatus is the lifecycle state of a recorded game.
type GameStatus string

// Game statuses.
const (
	GameOpen      GameStatus = "open"
	GameCompleted GameStatus = "completed"
	GameAbandoned GameStatus = "abandoned"
)

// TurnRecord captures a confirmed turn.
type TurnRecord struct {
	GameID     int64
	Player     int
	Points     int
	Marks      int
	Darts      string
	RecordedAt time.Time
}

// GameResult closes the open game.
type GameResult struct {
	Status       GameStatus
	Player1Score int
	Player2Score int
	// Winner is 1 or 2, or 0 for a tie or an abandoned game.
	Winner  int
	EndedAt time.Time
}

// GameRecord summarizes a recorded game.
type GameRecord struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      *time.Time
	Status       GameStatus
	Player1Score int
	Player2Score int
	Winner       int
	Turns        int
}
