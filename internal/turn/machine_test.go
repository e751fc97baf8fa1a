package turn

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/boomero/internal/game"
)

func apply(t *testing.T, m *Machine, s game.State, d Dialog, cmd Command) Result {
	t.Helper()
	res, err := m.Apply(s, d, cmd)
	if err != nil {
		t.Fatalf("apply %T%+v: %v", cmd, cmd, err)
	}
	return res
}

func throwAll(t *testing.T, m *Machine, s game.State, throws ...Throw) Result {
	t.Helper()
	res := Result{State: s, Dialog: None{}}
	for _, th := range throws {
		res = apply(t, m, res.State, res.Dialog, th)
	}
	return res
}

func TestThreeSinglesReachSummaryAndConfirm(t *testing.T) {
	m := NewMachine(Options{})
	res := throwAll(t, m, game.New(), Throw{Kind: game.Single, Value: 20}, Throw{Kind: game.Single, Value: 20})
	if PhaseOf(res.State, res.Dialog) != AwaitingThrow {
		t.Fatalf("expected to await the third dart, got %s", PhaseOf(res.State, res.Dialog))
	}
	res = apply(t, m, res.State, res.Dialog, Throw{Kind: game.Single, Value: 19})
	summary, ok := res.Dialog.(TurnSummary)
	if !ok {
		t.Fatalf("expected turn summary, got %T", res.Dialog)
	}
	if summary.PointsScored != 0 || summary.CurrentPlayer != game.Player1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if res.Persist {
		t.Fatalf("throws must not request a save")
	}

	res = apply(t, m, res.State, res.Dialog, Confirm{})
	if _, ok := res.Dialog.(None); !ok {
		t.Fatalf("expected no dialog after confirm, got %T", res.Dialog)
	}
	if !res.Persist {
		t.Fatalf("confirm must request a save")
	}
	if res.State.CurrentPlayer != game.Player2 || res.State.CurrentDart != 0 {
		t.Fatalf("expected player 2 at dart 0, got %d at %d", res.State.CurrentPlayer, res.State.CurrentDart)
	}
	if len(res.Notices) == 0 || res.Notices[0] != "Player 1 scored 0 points" {
		t.Fatalf("unexpected notices: %v", res.Notices)
	}
}

func TestSmallSinglesCircleWithoutAsking(t *testing.T) {
	m := NewMachine(Options{})
	res := Result{State: game.New(), Dialog: None{}}
	for i := 0; i < 3; i++ {
		res = apply(t, m, res.State, res.Dialog, Throw{Kind: game.Single, Value: 5})
		switch res.Dialog.(type) {
		case DoubleChoice, TripleChoice, CircleChoice:
			t.Fatalf("dart %d: unexpected dialog %T", i, res.Dialog)
		}
	}
	if _, ok := res.Dialog.(TurnSummary); !ok {
		t.Fatalf("expected turn summary, got %T", res.Dialog)
	}
	if got := res.State.Matrix.Hits(game.RowCircle, game.Player1); got != 1 {
		t.Fatalf("expected one circle hit, got %d", got)
	}
	if got := res.State.Matrix.Hits(4, game.Player1); got != 0 {
		t.Fatalf("expected no hits left on 5, got %d", got)
	}
}

func TestSkipCircleCheckGoesToSummary(t *testing.T) {
	m := NewMachine(Options{SkipCircleCheck: true})
	res := throwAll(t, m, game.New(),
		Throw{Kind: game.Single, Value: 5},
		Throw{Kind: game.Single, Value: 5},
		Throw{Kind: game.Single, Value: 5},
	)
	if _, ok := res.Dialog.(TurnSummary); !ok {
		t.Fatalf("expected turn summary, got %T", res.Dialog)
	}
	if got := res.State.Matrix.Hits(4, game.Player1); got != 3 {
		t.Fatalf("expected 3 hits on 5, got %d", got)
	}
	if res.State.Matrix.Hits(game.RowCircle, game.Player1) != 0 {
		t.Fatalf("circle must not be scored")
	}
}

func TestDoubleChoiceFlow(t *testing.T) {
	m := NewMachine(Options{})
	s := game.New()
	s.Matrix[19] = [2]int{3, 0}

	res := apply(t, m, s, None{}, Throw{Kind: game.Double, Value: 20})
	choice, ok := res.Dialog.(DoubleChoice)
	if !ok {
		t.Fatalf("expected double choice, got %T", res.Dialog)
	}
	if choice.Number != 20 || choice.DartIndex != 0 || choice.ScoringPlayer != game.Player1 {
		t.Fatalf("unexpected choice: %+v", choice)
	}
	if PhaseOf(res.State, res.Dialog) != AwaitingChoice {
		t.Fatalf("expected awaiting choice")
	}

	if _, err := m.Apply(res.State, res.Dialog, Throw{Kind: game.Single, Value: 1}); !errors.Is(err, ErrInvalidChoiceContext) {
		t.Fatalf("expected ErrInvalidChoiceContext for throw during choice, got %v", err)
	}
	wrong, err := m.Apply(res.State, res.Dialog, ChooseTriple{Number: 20, DartIndex: 0})
	if !errors.Is(err, ErrInvalidChoiceContext) {
		t.Fatalf("expected ErrInvalidChoiceContext for triple answer, got %v", err)
	}
	if wrong.State != res.State {
		t.Fatalf("state changed on protocol violation")
	}
	if _, err := m.Apply(res.State, res.Dialog, ChooseDouble{Number: 19, DartIndex: 0}); !errors.Is(err, ErrInvalidChoiceContext) {
		t.Fatalf("expected ErrInvalidChoiceContext for wrong number, got %v", err)
	}

	res = apply(t, m, res.State, res.Dialog, ChooseDouble{Number: 20, DartIndex: 0, UseCategory: false})
	if _, ok := res.Dialog.(None); !ok {
		t.Fatalf("expected no dialog, got %T", res.Dialog)
	}
	if res.State.CurrentDart != 1 || res.State.PointsThisTurn != 40 {
		t.Fatalf("expected dart 1 with 40 points, got %d with %d", res.State.CurrentDart, res.State.PointsThisTurn)
	}
	if len(res.Notices) != 1 || res.Notices[0] != "Scored 40 points" {
		t.Fatalf("unexpected notices: %v", res.Notices)
	}
}

func TestTripleChoiceOnLastDartCompletesTurn(t *testing.T) {
	m := NewMachine(Options{})
	res := throwAll(t, m, game.New(), Throw{Kind: game.Miss}, Throw{Kind: game.Single, Value: 12})
	res = apply(t, m, res.State, res.Dialog, Throw{Kind: game.Triple, Value: 18})
	if _, ok := res.Dialog.(TripleChoice); !ok {
		t.Fatalf("expected triple choice, got %T", res.Dialog)
	}
	res = apply(t, m, res.State, res.Dialog, ChooseTriple{Number: 18, DartIndex: 2, UseCategory: true})
	summary, ok := res.Dialog.(TurnSummary)
	if !ok {
		t.Fatalf("expected turn summary, got %T", res.Dialog)
	}
	if summary.Darts[2] == nil || !summary.Darts[2].ScoredAsCategory {
		t.Fatalf("expected the triple scored on its category: %+v", summary.Darts[2])
	}
	if got := res.State.Matrix.Hits(game.RowTriple, game.Player1); got != 1 {
		t.Fatalf("expected one triple category hit, got %d", got)
	}
}

func circleSetup(t *testing.T, m *Machine) Result {
	t.Helper()
	s := game.New()
	s.Matrix[19] = [2]int{3, 0}
	res := throwAll(t, m, s,
		Throw{Kind: game.Single, Value: 20},
		Throw{Kind: game.Single, Value: 20},
		Throw{Kind: game.Single, Value: 20},
	)
	choice, ok := res.Dialog.(CircleChoice)
	if !ok {
		t.Fatalf("expected circle choice, got %T", res.Dialog)
	}
	if choice.Points != 60 || choice.ScoringPlayer != game.Player1 {
		t.Fatalf("unexpected circle choice: %+v", choice)
	}
	return res
}

func TestCircleChoiceKeepNumbers(t *testing.T) {
	m := NewMachine(Options{})
	res := circleSetup(t, m)
	thrown := res.State

	kept := apply(t, m, res.State, res.Dialog, ChooseCircle{UseCircle: false})
	summary, ok := kept.Dialog.(TurnSummary)
	if !ok {
		t.Fatalf("expected turn summary, got %T", kept.Dialog)
	}
	if summary.PointsScored != 60 || kept.State.Matrix != thrown.Matrix {
		t.Fatalf("keeping numbers changed the turn: %d points", summary.PointsScored)
	}

	dismissed := apply(t, m, res.State, res.Dialog, Dismiss{})
	if dismissed.State != kept.State {
		t.Fatalf("dismissing the circle offer should keep numbers")
	}
}

func TestCircleChoiceUseCircle(t *testing.T) {
	m := NewMachine(Options{})
	res := circleSetup(t, m)
	res = apply(t, m, res.State, res.Dialog, ChooseCircle{UseCircle: true})
	summary, ok := res.Dialog.(TurnSummary)
	if !ok {
		t.Fatalf("expected turn summary, got %T", res.Dialog)
	}
	if summary.PointsScored != 0 {
		t.Fatalf("an open circle row scores nothing, got %d", summary.PointsScored)
	}
	if got := res.State.Matrix.Hits(19, game.Player1); got != 3 {
		t.Fatalf("expected the twenties taken back to 3, got %d", got)
	}

	res = apply(t, m, res.State, res.Dialog, Reset{})
	if got := res.State.Matrix.Hits(game.RowCircle, game.Player1); got != 0 {
		t.Fatalf("expected circle hit removed, got %d", got)
	}
	if got := res.State.Matrix.Hits(19, game.Player1); got != 3 {
		t.Fatalf("expected twenties untouched by reset, got %d", got)
	}
}

func TestDismissPendingChoiceDiscardsDart(t *testing.T) {
	m := NewMachine(Options{})
	res := apply(t, m, game.New(), None{}, Throw{Kind: game.Single, Value: 3})
	res = apply(t, m, res.State, res.Dialog, Throw{Kind: game.Double, Value: 16})
	if _, ok := res.Dialog.(DoubleChoice); !ok {
		t.Fatalf("expected double choice, got %T", res.Dialog)
	}
	res = apply(t, m, res.State, res.Dialog, Dismiss{})
	if _, ok := res.Dialog.(None); !ok {
		t.Fatalf("expected no dialog, got %T", res.Dialog)
	}
	if res.State.CurrentDart != 1 || res.State.Darts[1] != nil {
		t.Fatalf("expected the pending dart dropped, got %+v", res.State.Darts)
	}
}

func TestSummaryCannotBeDismissed(t *testing.T) {
	m := NewMachine(Options{})
	res := throwAll(t, m, game.New(), Throw{Kind: game.Miss}, Throw{Kind: game.Miss}, Throw{Kind: game.Miss})
	after := apply(t, m, res.State, res.Dialog, Dismiss{})
	if _, ok := after.Dialog.(TurnSummary); !ok {
		t.Fatalf("expected summary to stay, got %T", after.Dialog)
	}
}

func TestInvalidTargetIsNoOpWithNotice(t *testing.T) {
	m := NewMachine(Options{})
	s := game.New()
	res, err := m.Apply(s, None{}, Throw{Kind: game.Single, Value: 21})
	if !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if res.State != s {
		t.Fatalf("state changed on invalid target")
	}
	if len(res.Notices) != 1 || !strings.HasPrefix(res.Notices[0], "Invalid number") {
		t.Fatalf("unexpected notices: %v", res.Notices)
	}

	res, err = m.Apply(s, None{}, Throw{Kind: game.Bullseye, Value: 3})
	if !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if len(res.Notices) != 1 || !strings.HasPrefix(res.Notices[0], "Invalid bullseye") {
		t.Fatalf("unexpected notices: %v", res.Notices)
	}
}

func TestCommandsOutOfPhase(t *testing.T) {
	m := NewMachine(Options{})
	s := game.New()
	for _, cmd := range []Command{Confirm{}, ChooseCircle{UseCircle: true}, ChooseDouble{Number: 20}} {
		res, err := m.Apply(s, None{}, cmd)
		if !errors.Is(err, ErrInvalidChoiceContext) {
			t.Fatalf("%T: expected ErrInvalidChoiceContext, got %v", cmd, err)
		}
		if res.State != s {
			t.Fatalf("%T: state changed", cmd)
		}
	}
}

func TestThrowAfterGameOver(t *testing.T) {
	m := NewMachine(Options{})
	s := game.New()
	s.GameOver = true
	if PhaseOf(s, None{}) != GameOver {
		t.Fatalf("expected game over phase")
	}
	res, err := m.Apply(s, None{}, Throw{Kind: game.Single, Value: 20})
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if len(res.Notices) == 0 {
		t.Fatalf("expected a notice")
	}

	res = apply(t, m, s, None{}, NewGame{})
	if res.State != game.New() || !res.Persist {
		t.Fatalf("expected a fresh persisted game")
	}
}

func TestResetMidTurn(t *testing.T) {
	m := NewMachine(Options{})
	res := throwAll(t, m, game.New(), Throw{Kind: game.Single, Value: 20}, Throw{Kind: game.Bullseye, Value: 2})
	res = apply(t, m, res.State, res.Dialog, Reset{})
	if res.State.Matrix != (game.Matrix{}) || res.State.CurrentDart != 0 {
		t.Fatalf("expected a clean board, got %+v", res.State)
	}
	if !res.Persist {
		t.Fatalf("reset must request a save")
	}
}

func TestRestore(t *testing.T) {
	s := game.New()
	s, _, err := game.Resolve(s, game.Single, 5)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s.Matrix[19] = [2]int{3, 0}
	pending, isPending, err := game.ResolveDouble(s, 20)
	if err != nil || !isPending {
		t.Fatalf("expected pending double, err %v", err)
	}
	restored, d := Restore(pending)
	if _, ok := d.(None); !ok {
		t.Fatalf("expected no dialog, got %T", d)
	}
	if restored.Darts[1] != nil || restored.CurrentDart != 1 {
		t.Fatalf("expected pending dart dropped, got %+v", restored.Darts)
	}

	full := game.New()
	for i := 0; i < 3; i++ {
		full, _, _ = game.Resolve(full, game.Single, 7)
	}
	_, d = Restore(full)
	if _, ok := d.(TurnSummary); !ok {
		t.Fatalf("expected summary for a full turn, got %T", d)
	}
}

func TestMixedBullsGoToSummary(t *testing.T) {
	m := NewMachine(Options{})
	res := throwAll(t, m, game.New(),
		Throw{Kind: game.Bullseye, Value: 1},
		Throw{Kind: game.Bullseye, Value: 1},
		Throw{Kind: game.Bullseye, Value: 2},
	)
	if _, ok := res.Dialog.(TurnSummary); !ok {
		t.Fatalf("expected turn summary for single, single, double bull, got %T %+v", res.Dialog, res.Dialog)
	}

	res = throwAll(t, m, game.New(),
		Throw{Kind: game.Bullseye, Value: 1},
		Throw{Kind: game.Bullseye, Value: 1},
		Throw{Kind: game.Bullseye, Value: 1},
	)
	choice, ok := res.Dialog.(CircleChoice)
	if !ok {
		t.Fatalf("expected circle choice for three single bulls, got %T", res.Dialog)
	}
	if choice.Points != 3*game.BullPoints {
		t.Fatalf("expected %d circle points, got %d", 3*game.BullPoints, choice.Points)
	}
}
