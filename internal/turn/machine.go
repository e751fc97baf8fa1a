package turn

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/boomero/internal/game"
)

var (
	// ErrInvalidChoiceContext reports a command that does not fit the pending
	// dialog, such as a circle answer while no circle is offered. It means the
	// caller broke the protocol; the state is left alone.
	ErrInvalidChoiceContext = errors.New("command does not match the pending dialog")

	// ErrGameOver reports a throw after the game has ended.
	ErrGameOver = errors.New("game is over")
)

// Options tune turn completion.
type Options struct {
	// SkipCircleCheck completes a three-dart turn straight to its summary.
	SkipCircleCheck bool
}

// Result is the outcome of one command.
type Result struct {
	State  game.State
	Dialog Dialog
	// Notices are transient messages for the player.
	Notices []string
	// Persist is set when the new state must be written to the snapshot.
	Persist bool
}

// Machine applies commands to a state and its pending dialog.
type Machine struct {
	opts Options
}

// NewMachine returns a Machine using opts for every turn it completes.
func NewMachine(opts Options) *Machine {
	return &Machine{opts: opts}
}

// Apply runs cmd against the state and pending dialog. Every pair of dialog
// and command either transitions or returns an error together with the
// unchanged input; notices in the result are meant for the player in both
// cases.
func (m *Machine) Apply(s game.State, d Dialog, cmd Command) (Result, error) {
	if d == nil {
		d = None{}
	}
	switch c := cmd.(type) {
	case Throw:
		return m.throw(s, d, c)
	case ChooseDouble:
		return m.chooseMultiplied(s, d, game.Double, c.Number, c.DartIndex, c.UseCategory)
	case ChooseTriple:
		return m.chooseMultiplied(s, d, game.Triple, c.Number, c.DartIndex, c.UseCategory)
	case ChooseCircle:
		return m.chooseCircle(s, d, c.UseCircle)
	case Confirm:
		return m.confirm(s, d)
	case Reset:
		return m.reset(s, d)
	case Dismiss:
		return m.dismiss(s, d)
	case NewGame:
		return Result{State: game.New(), Dialog: None{}, Notices: []string{"New game started"}, Persist: true}, nil
	default:
		return unchanged(s, d), fmt.Errorf("%w: unknown command %T", ErrInvalidChoiceContext, cmd)
	}
}

func (m *Machine) throw(s game.State, d Dialog, c Throw) (Result, error) {
	if s.GameOver {
		res := unchanged(s, d)
		res.Notices = []string{"Game over. Start a new game to keep playing."}
		return res, ErrGameOver
	}
	if _, idle := d.(None); !idle {
		return unchanged(s, d), fmt.Errorf("%w: throw while %s", ErrInvalidChoiceContext, PhaseOf(s, d))
	}

	next, pending, err := game.Resolve(s, c.Kind, c.Value)
	if err != nil {
		res := unchanged(s, d)
		if errors.Is(err, game.ErrInvalidTarget) {
			res.Notices = []string{invalidTargetNotice(c.Kind)}
		}
		return res, err
	}
	if pending {
		return Result{State: next, Dialog: choiceFor(s, next, c)}, nil
	}

	res := Result{State: next, Dialog: None{}, Notices: throwNotices(c, next.PointsThisTurn-s.PointsThisTurn)}
	res.State, res.Dialog = CompleteTurn(next, m.opts)
	return res, nil
}

func choiceFor(before, pending game.State, c Throw) Dialog {
	if c.Kind == game.Triple {
		return TripleChoice{
			Number:        c.Value,
			DartIndex:     before.CurrentDart,
			ScoringPlayer: before.CurrentPlayer,
			PendingDarts:  pending.Darts,
		}
	}
	return DoubleChoice{
		Number:        c.Value,
		DartIndex:     before.CurrentDart,
		ScoringPlayer: before.CurrentPlayer,
		PendingDarts:  pending.Darts,
	}
}

func (m *Machine) chooseMultiplied(s game.State, d Dialog, kind game.Kind, number, dartIndex int, useCategory bool) (Result, error) {
	var player game.Player
	switch dialog := d.(type) {
	case DoubleChoice:
		if kind != game.Double || dialog.Number != number || dialog.DartIndex != dartIndex {
			return unchanged(s, d), fmt.Errorf("%w: %s %d at dart %d", ErrInvalidChoiceContext, kind, number, dartIndex)
		}
		player = dialog.ScoringPlayer
	case TripleChoice:
		if kind != game.Triple || dialog.Number != number || dialog.DartIndex != dartIndex {
			return unchanged(s, d), fmt.Errorf("%w: %s %d at dart %d", ErrInvalidChoiceContext, kind, number, dartIndex)
		}
		player = dialog.ScoringPlayer
	default:
		return unchanged(s, d), fmt.Errorf("%w: %s choice while %s", ErrInvalidChoiceContext, kind, PhaseOf(s, d))
	}

	next, err := game.ResolveMultiplierChoice(s, kind, number, dartIndex, player, useCategory)
	if err != nil {
		return unchanged(s, d), err
	}
	res := Result{Notices: scoredNotices(next.PointsThisTurn - s.PointsThisTurn)}
	res.State, res.Dialog = CompleteTurn(next, m.opts)
	return res, nil
}

func (m *Machine) chooseCircle(s game.State, d Dialog, useCircle bool) (Result, error) {
	dialog, ok := d.(CircleChoice)
	if !ok {
		return unchanged(s, d), fmt.Errorf("%w: circle choice while %s", ErrInvalidChoiceContext, PhaseOf(s, d))
	}
	var next game.State
	if useCircle {
		next = game.ScoreCircle(s, dialog.Points, dialog.ScoringPlayer)
	} else {
		next = game.ReprocessAsNumbers(s)
	}
	return Result{State: next, Dialog: summaryOf(next)}, nil
}

func (m *Machine) confirm(s game.State, d Dialog) (Result, error) {
	if _, ok := d.(TurnSummary); !ok {
		return unchanged(s, d), fmt.Errorf("%w: confirm while %s", ErrInvalidChoiceContext, PhaseOf(s, d))
	}
	next := game.ConfirmTurn(s)
	notices := []string{fmt.Sprintf("Player %d scored %d points", s.CurrentPlayer, s.PointsThisTurn)}
	if next.GameOver && !s.GameOver {
		notices = append(notices, gameOverNotice(next))
	}
	return Result{State: next, Dialog: None{}, Notices: notices, Persist: true}, nil
}

func (m *Machine) reset(s game.State, d Dialog) (Result, error) {
	switch d.(type) {
	case None, CircleChoice, TurnSummary:
	default:
		return unchanged(s, d), fmt.Errorf("%w: reset while %s", ErrInvalidChoiceContext, PhaseOf(s, d))
	}
	next := game.ResetTurn(s)
	return Result{State: next, Dialog: None{}, Notices: []string{"Turn reset successfully"}, Persist: true}, nil
}

// dismiss closes a dialog without answering it. A pending double or triple is
// dropped so the dart can be entered again. A circle offer is declined, which
// ends in the turn summary like any circle answer. The summary itself cannot
// be dismissed: only confirm or reset leave it.
func (m *Machine) dismiss(s game.State, d Dialog) (Result, error) {
	switch d.(type) {
	case None:
		return unchanged(s, d), nil
	case DoubleChoice, TripleChoice:
		return Result{State: game.DiscardPending(s), Dialog: None{}, Notices: []string{"Dart discarded"}}, nil
	case CircleChoice:
		return m.chooseCircle(s, d, false)
	case TurnSummary:
		return unchanged(s, d), nil
	default:
		return unchanged(s, d), fmt.Errorf("%w: unknown dialog %T", ErrInvalidChoiceContext, d)
	}
}

// CompleteTurn decides what follows the third dart: an automatic circle for
// three small singles, a circle offer for any other eligible turn, or the
// summary. Turns with fewer than three darts are returned untouched.
func CompleteTurn(s game.State, opts Options) (game.State, Dialog) {
	if s.CurrentDart < game.DartsPerTurn {
		return s, None{}
	}
	if !opts.SkipCircleCheck && game.CircleEligible(s) {
		points := game.CirclePoints(s.Darts)
		if game.AutoCircle(s) {
			next := game.ScoreCircle(s, points, s.CurrentPlayer)
			return next, summaryOf(next)
		}
		return s, CircleChoice{Points: points, ScoringPlayer: s.CurrentPlayer, Darts: s.Darts}
	}
	return s, summaryOf(s)
}

// Restore rebuilds the dialog for a state loaded from a snapshot. A dart left
// waiting for a choice is dropped, and a full turn goes straight back to its
// summary without offering the circle again.
func Restore(s game.State) (game.State, Dialog) {
	if s.GameOver {
		return s, None{}
	}
	s = game.DiscardPending(s)
	return CompleteTurn(s, Options{SkipCircleCheck: true})
}

func unchanged(s game.State, d Dialog) Result {
	return Result{State: s, Dialog: d}
}

func invalidTargetNotice(kind game.Kind) string {
	if kind == game.Bullseye {
		return "Invalid bullseye type. Use 1 for single (25) or 2 for double (50)."
	}
	return "Invalid number. Must be between 1 and 20."
}

func throwNotices(c Throw, scored int) []string {
	switch c.Kind {
	case game.Miss:
		return []string{"Recorded miss (0 points)"}
	case game.Bullseye:
		label := "single"
		if c.Value == 2 {
			label = "double"
		}
		return append([]string{fmt.Sprintf("Added %s bullseye", label)}, scoredNotices(scored)...)
	default:
		return scoredNotices(scored)
	}
}

func scoredNotices(scored int) []string {
	if scored <= 0 {
		return nil
	}
	return []string{fmt.Sprintf("Scored %d points", scored)}
}

func gameOverNotice(s game.State) string {
	if leader := game.Leader(s); leader != 0 {
		return fmt.Sprintf("Game over. Player %d wins %d to %d", leader, s.Score(leader), s.Score(leader.Opponent()))
	}
	return fmt.Sprintf("Game over. Tied at %d", s.Player1Score)
}
