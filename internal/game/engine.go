package game

import (
	"errors"
	"fmt"
)

// ErrTurnFull reports a throw after the third dart of a turn.
var ErrTurnFull = errors.New("turn already has three darts")

// Resolve dispatches a throw to the resolver for its kind. pending is true
// when a double or triple needs the player to pick between the number row
// and the category row; the dart is then stored provisionally and the dart
// index is not advanced.
func Resolve(s State, kind Kind, value int) (next State, pending bool, err error) {
	switch kind {
	case Single:
		next, err = ResolveSingle(s, value)
		return next, false, err
	case Double:
		return ResolveDouble(s, value)
	case Triple:
		return ResolveTriple(s, value)
	case Bullseye:
		next, err = ResolveBullseye(s, value)
		return next, false, err
	case Miss:
		next, err = ResolveMiss(s)
		return next, false, err
	default:
		return s, false, fmt.Errorf("%w: unknown dart kind %d", ErrInvalidTarget, kind)
	}
}

// ResolveSingle records a single hit on number for the current player.
func ResolveSingle(s State, number int) (State, error) {
	if err := checkNumber(number); err != nil {
		return s, err
	}
	if s.CurrentDart >= DartsPerTurn {
		return s, ErrTurnFull
	}
	return s.resolve(Dart{Kind: Single, Value: number, Valid: true}), nil
}

// ResolveDouble records a double on number. Doubles below 10 always go to the
// DOUBLE row. Doubles of 10 and up count as two number hits without asking
// when either the number row or the DOUBLE row is closed by both players;
// otherwise the result is pending a choice.
func ResolveDouble(s State, number int) (State, bool, error) {
	return resolveMultiplied(s, Double, number)
}

// ResolveTriple is the triple counterpart of ResolveDouble.
func ResolveTriple(s State, number int) (State, bool, error) {
	return resolveMultiplied(s, Triple, number)
}

func resolveMultiplied(s State, kind Kind, number int) (State, bool, error) {
	if err := checkNumber(number); err != nil {
		return s, false, err
	}
	if s.CurrentDart >= DartsPerTurn {
		return s, false, ErrTurnFull
	}
	d := Dart{Kind: kind, Value: number, Valid: true}
	switch {
	case number < MinScoringNumber:
		d.ScoredAsCategory = true
		return s.resolve(d), false, nil
	case s.Matrix.Eliminated(numberRow(number)), s.Matrix.Eliminated(categoryRow(kind)):
		return s.resolve(d), false, nil
	default:
		return s.withDart(s.CurrentDart, d), true, nil
	}
}

// ResolveMultiplierChoice settles a pending double or triple. useCategory puts
// one hit on the category row, worth number times the multiplier once that
// row is closed; otherwise the dart adds its hits to the number row. The dart
// lands in slot dartIndex, the index moves past it and player becomes the
// current player.
func ResolveMultiplierChoice(s State, kind Kind, number, dartIndex int, player Player, useCategory bool) (State, error) {
	if kind != Double && kind != Triple {
		return s, fmt.Errorf("%w: %s has no category choice", ErrInvalidTarget, kind)
	}
	if err := checkNumber(number); err != nil {
		return s, err
	}
	if dartIndex < 0 || dartIndex >= DartsPerTurn {
		return s, fmt.Errorf("%w: dart index %d", ErrTurnFull, dartIndex)
	}
	d := Dart{Kind: kind, Value: number, Valid: true, ScoredAsCategory: useCategory}
	s.CurrentPlayer = player
	s.PointsThisTurn += applyDart(&s.Matrix, player, d)
	s = s.withDart(dartIndex, d)
	s.CurrentDart = dartIndex + 1
	return s, nil
}

// ResolveBullseye records a single (value 1) or double (value 2) bull. A double
// bull adds two hits, each checked on its own, but counts as one dart.
func ResolveBullseye(s State, value int) (State, error) {
	if value != 1 && value != 2 {
		return s, fmt.Errorf("%w: bullseye value %d", ErrInvalidTarget, value)
	}
	if s.CurrentDart >= DartsPerTurn {
		return s, ErrTurnFull
	}
	return s.resolve(Dart{Kind: Bullseye, Value: value, Valid: true}), nil
}

// ResolveMiss records a dart that hit nothing.
func ResolveMiss(s State) (State, error) {
	if s.CurrentDart >= DartsPerTurn {
		return s, ErrTurnFull
	}
	return s.resolve(Dart{Kind: Miss}), nil
}

// DiscardPending clears a provisionally stored dart whose choice was abandoned.
func DiscardPending(s State) State {
	if s.CurrentDart < DartsPerTurn {
		s.Darts[s.CurrentDart] = nil
	}
	return s
}

// ConfirmTurn commits the turn's points, hands the board to the other player
// and checks for the end of the game.
func ConfirmTurn(s State) State {
	if s.CurrentPlayer == Player2 {
		s.Player2Score += s.PointsThisTurn
	} else {
		s.Player1Score += s.PointsThisTurn
	}
	s.CurrentPlayer = s.CurrentPlayer.Opponent()
	s = clearTurn(s)
	if CheckGameEnd(s) {
		s.GameOver = true
	}
	return s
}

// ResetTurn takes back every dart of the current turn. Scores and the current
// player are unchanged.
func ResetTurn(s State) State {
	reverseTurn(&s.Matrix, s.CurrentPlayer, s.Darts)
	return clearTurn(s)
}

func clearTurn(s State) State {
	s.CurrentDart = 0
	s.PointsThisTurn = 0
	s.Darts = [DartsPerTurn]*Dart{}
	return s
}

// resolve stores d in the current slot, applies it and advances the dart index.
func (s State) resolve(d Dart) State {
	s.PointsThisTurn += applyDart(&s.Matrix, s.CurrentPlayer, d)
	s = s.withDart(s.CurrentDart, d)
	s.CurrentDart++
	return s
}

func checkNumber(number int) error {
	if !validNumber(number) {
		return fmt.Errorf("%w: number %d", ErrInvalidTarget, number)
	}
	return nil
}
