// Package game holds the closing dart game data model and its scoring rules.
package game

import (
	"errors"
	"strconv"
)

// Board layout.
const (
	// Rows is the number of tracked rows: numbers 1-20 plus four categories.
	Rows = 24

	RowDouble   = 20
	RowTriple   = 21
	RowBullseye = 22
	RowCircle   = 23

	// FirstScoringRow is the row of number 10, the lowest number that can score.
	FirstScoringRow = 9

	// ClosedHits is the hit count at which a row is closed for a player.
	ClosedHits = 3

	// MinScoringNumber is the lowest number whose surplus hits score points.
	MinScoringNumber = 10

	// DartsPerTurn is the number of throws in one turn.
	DartsPerTurn = 3

	// BullPoints is the value of a single bullseye; a double bull is worth two of them.
	BullPoints = 25
)

// ErrInvalidTarget reports a number outside 1-20 or a bullseye value outside {1,2}.
var ErrInvalidTarget = errors.New("invalid target")

// Kind is the outcome class of a single dart.
type Kind int

// Dart kinds.
const (
	Single Kind = iota
	Double
	Triple
	Bullseye
	Miss
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "SINGLE"
	case Double:
		return "DOUBLE"
	case Triple:
		return "TRIPLE"
	case Bullseye:
		return "BULLSEYE"
	case Miss:
		return "MISS"
	default:
		return "UNKNOWN"
	}
}

// Multiplier returns how many number-row hits a dart of this kind is worth.
func (k Kind) Multiplier() int {
	switch k {
	case Single:
		return 1
	case Double:
		return 2
	case Triple:
		return 3
	default:
		return 0
	}
}

// Dart is an immutable record of one resolved throw.
type Dart struct {
	Kind  Kind
	Value int
	Valid bool
	// ScoredAsCategory is set when a double or triple went to its category row
	// instead of the number row.
	ScoredAsCategory bool
	// ScoredAsCircle is set when the dart was folded into a circle hit.
	ScoredAsCircle bool
}

// Player identifies one of the two players. The zero value is not a player.
type Player int

// Players.
const (
	Player1 Player = 1
	Player2 Player = 2
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) column() int {
	if p == Player2 {
		return 1
	}
	return 0
}

// Matrix is the hit grid: one row per target, one column per player.
type Matrix [Rows][2]int

// Hits returns the hit count of player p on row.
func (m *Matrix) Hits(row int, p Player) int {
	return m[row][p.column()]
}

func (m *Matrix) add(row int, p Player, n int) {
	m[row][p.column()] += n
}

// remove subtracts n hits, never going below zero.
func (m *Matrix) remove(row int, p Player, n int) {
	col := p.column()
	m[row][col] -= n
	if m[row][col] < 0 {
		m[row][col] = 0
	}
}

// Closed reports whether player p has closed row.
func (m *Matrix) Closed(row int, p Player) bool {
	return m.Hits(row, p) >= ClosedHits
}

// Eliminated reports whether both players have closed row.
func (m *Matrix) Eliminated(row int) bool {
	return m.Closed(row, Player1) && m.Closed(row, Player2)
}

// State is the authoritative game snapshot. It is a value: engine functions
// take a State and return a new one without touching the input.
type State struct {
	Player1Score   int
	Player2Score   int
	CurrentPlayer  Player
	CurrentDart    int
	PointsThisTurn int
	GameOver       bool
	Matrix         Matrix
	// Darts holds the current turn in throw order; nil slots are empty.
	Darts [DartsPerTurn]*Dart
}

// New returns the state of a fresh game with player 1 to throw.
func New() State {
	return State{CurrentPlayer: Player1}
}

// Score returns the committed score of p.
func (s State) Score(p Player) int {
	if p == Player2 {
		return s.Player2Score
	}
	return s.Player1Score
}

// DartsLeft returns the number of throws remaining in the current turn.
func (s State) DartsLeft() int {
	return DartsPerTurn - s.CurrentDart
}

// TurnDarts returns the filled dart slots in throw order.
func (s State) TurnDarts() []Dart {
	out := make([]Dart, 0, DartsPerTurn)
	for _, d := range s.Darts {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func (s State) withDart(slot int, d Dart) State {
	s.Darts[slot] = &d
	return s
}

// CategoryLabel returns the display label of a row.
func CategoryLabel(row int) string {
	switch {
	case row >= 0 && row < RowDouble:
		return strconv.Itoa(row + 1)
	case row == RowDouble:
		return "DBL"
	case row == RowTriple:
		return "TPL"
	case row == RowBullseye:
		return "BULL"
	case row == RowCircle:
		return "CIRC"
	default:
		return "???"
	}
}

func validNumber(number int) bool {
	return number >= 1 && number <= 20
}

func numberRow(number int) int {
	return number - 1
}
