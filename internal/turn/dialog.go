// Package turn sequences a player's three darts through choices, the circle
// decision and the turn summary.
package turn

import "github.com/verte-zerg/boomero/internal/game"

// Dialog is the decision currently pending for the presentation layer.
// Exactly one is live at a time; None means nothing is pending.
type Dialog interface {
	isDialog()
}

// None is the idle dialog.
type None struct{}

// DoubleChoice asks whether a double of 10 or more goes to the DOUBLE row or
// counts as two number hits.
type DoubleChoice struct {
	Number        int
	DartIndex     int
	ScoringPlayer game.Player
	PendingDarts  [game.DartsPerTurn]*game.Dart
}

// TripleChoice is the triple counterpart of DoubleChoice.
type TripleChoice struct {
	Number        int
	DartIndex     int
	ScoringPlayer game.Player
	PendingDarts  [game.DartsPerTurn]*game.Dart
}

// CircleChoice offers to fold three darts on the same target into one CIRCLE hit.
type CircleChoice struct {
	Points        int
	ScoringPlayer game.Player
	Darts         [game.DartsPerTurn]*game.Dart
}

// TurnSummary is shown before the turn is committed or reset.
type TurnSummary struct {
	Darts         [game.DartsPerTurn]*game.Dart
	PointsScored  int
	CurrentPlayer game.Player
}

func (None) isDialog()         {}
func (DoubleChoice) isDialog() {}
func (TripleChoice) isDialog() {}
func (CircleChoice) isDialog() {}
func (TurnSummary) isDialog()  {}

// Phase names where a turn stands.
type Phase int

// Phases.
const (
	AwaitingThrow Phase = iota
	AwaitingChoice
	AwaitingCircleDecision
	AwaitingTurnSummary
	GameOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingThrow:
		return "awaiting throw"
	case AwaitingChoice:
		return "awaiting choice"
	case AwaitingCircleDecision:
		return "awaiting circle decision"
	case AwaitingTurnSummary:
		return "awaiting turn summary"
	case GameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// PhaseOf derives the phase from the state and the pending dialog.
func PhaseOf(s game.State, d Dialog) Phase {
	switch d.(type) {
	case DoubleChoice, TripleChoice:
		return AwaitingChoice
	case CircleChoice:
		return AwaitingCircleDecision
	case TurnSummary:
		return AwaitingTurnSummary
	default:
		if s.GameOver {
			return GameOver
		}
		return AwaitingThrow
	}
}

func summaryOf(s game.State) TurnSummary {
	return TurnSummary{
		Darts:         s.Darts,
		PointsScored:  s.PointsThisTurn,
		CurrentPlayer: s.CurrentPlayer,
	}
}
