package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/boomero/internal/game"
	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/turn"
)

type fakeSnaps struct {
	saved   game.State
	hasSave bool
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeSnaps) LoadSnapshot(context.Context) (game.State, bool, error) {
	if f.loadErr != nil {
		return game.State{}, false, f.loadErr
	}
	return f.saved, f.hasSave, nil
}

func (f *fakeSnaps) SaveSnapshot(_ context.Context, s game.State) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved, f.hasSave = s, true
	return nil
}

type fakeHistory struct {
	turns     []model.TurnRecord
	results   []model.GameResult
	recordErr error
}

func (f *fakeHistory) RecordTurn(_ context.Context, rec model.TurnRecord) (int64, error) {
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	f.turns = append(f.turns, rec)
	return 1, nil
}

func (f *fakeHistory) EndGame(_ context.Context, result model.GameResult) error {
	f.results = append(f.results, result)
	return nil
}

func newTestStore(t *testing.T, snaps *fakeSnaps, history *fakeHistory) *Store {
	t.Helper()
	opts := Options{Logger: zerolog.Nop()}
	if history != nil {
		opts.History = history
	}
	s := New(context.Background(), snaps, opts)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func throw(t *testing.T, s *Store, notation string) {
	t.Helper()
	if err := s.SubmitNotation(context.Background(), notation); err != nil {
		t.Fatalf("throw %s: %v", notation, err)
	}
}

func TestNewStartsFreshWithoutSnapshot(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	if s.State() != game.New() {
		t.Fatalf("expected a new game")
	}
	if _, ok := s.Dialog().(turn.None); !ok {
		t.Fatalf("expected no dialog, got %T", s.Dialog())
	}
}

func TestNewFallsBackOnLoadError(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{loadErr: errors.New("disk gone")}, nil)
	if s.State() != game.New() {
		t.Fatalf("expected a new game after a load failure")
	}
}

func TestNewRestoresSummary(t *testing.T) {
	saved := game.New()
	saved.Player1Score = 30
	for i := 0; i < 3; i++ {
		saved, _, _ = game.Resolve(saved, game.Miss, 0)
	}
	s := newTestStore(t, &fakeSnaps{saved: saved, hasSave: true}, nil)
	if s.State().Player1Score != 30 {
		t.Fatalf("expected restored score")
	}
	if _, ok := s.Dialog().(turn.TurnSummary); !ok {
		t.Fatalf("expected restored summary, got %T", s.Dialog())
	}
}

func TestFullTurnSavesAndRecords(t *testing.T) {
	snaps := &fakeSnaps{}
	history := &fakeHistory{}
	s := newTestStore(t, snaps, history)
	ctx := context.Background()

	throw(t, s, "20")
	throw(t, s, "T20")
	if _, ok := s.Dialog().(turn.TripleChoice); !ok {
		t.Fatalf("expected triple choice, got %T", s.Dialog())
	}
	if err := s.ResolveTripleChoice(ctx, 20, 1, false); err != nil {
		t.Fatalf("choose: %v", err)
	}
	throw(t, s, "m")
	if _, ok := s.Dialog().(turn.TurnSummary); !ok {
		t.Fatalf("expected summary, got %T", s.Dialog())
	}
	if snaps.saves != 0 {
		t.Fatalf("throws must not save, got %d saves", snaps.saves)
	}

	if err := s.ConfirmTurn(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if snaps.saves != 1 || snaps.saved.CurrentPlayer != game.Player2 {
		t.Fatalf("expected the confirmed state saved, got %d saves", snaps.saves)
	}
	after := s.State()
	if after.Player1Score != 20 || after.Matrix.Hits(19, game.Player1) != 4 {
		t.Fatalf("unexpected state after confirm: %+v", after)
	}
	if len(history.turns) != 1 {
		t.Fatalf("expected one recorded turn, got %d", len(history.turns))
	}
	rec := history.turns[0]
	if rec.Player != 1 || rec.Points != 20 || rec.Marks != 4 || rec.Darts != "20 T20 M" {
		t.Fatalf("unexpected turn record: %+v", rec)
	}
}

func TestSaveFailureIsNotFatal(t *testing.T) {
	snaps := &fakeSnaps{saveErr: errors.New("read-only")}
	s := newTestStore(t, snaps, nil)
	if err := s.ResetTurn(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snaps.saves != 1 {
		t.Fatalf("expected a save attempt")
	}
}

func TestNewGameAbandonsHistory(t *testing.T) {
	history := &fakeHistory{}
	s := newTestStore(t, &fakeSnaps{}, history)
	throw(t, s, "19")
	if err := s.NewGame(context.Background()); err != nil {
		t.Fatalf("new game: %v", err)
	}
	if len(history.results) != 1 || history.results[0].Status != model.GameAbandoned {
		t.Fatalf("expected an abandoned game, got %+v", history.results)
	}
	if s.State() != game.New() {
		t.Fatalf("expected a fresh board")
	}
}

// almostFinished leaves player 1 one circle hit from closing the board.
func almostFinished() *fakeSnaps {
	saved := game.New()
	for row := 0; row < game.Rows; row++ {
		saved.Matrix[row] = [2]int{3, 3}
	}
	saved.Matrix[game.RowCircle] = [2]int{2, 3}
	saved.Player1Score = 10
	return &fakeSnaps{saved: saved, hasSave: true}
}

func TestGameEndIsRecorded(t *testing.T) {
	history := &fakeHistory{}
	s := newTestStore(t, almostFinished(), history)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		throw(t, s, "M")
	}
	if err := s.ConfirmTurn(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if s.State().GameOver {
		t.Fatalf("player 1 has not finished the circle yet")
	}
	for i := 0; i < 3; i++ {
		throw(t, s, "M")
	}
	if err := s.ConfirmTurn(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	for i := 0; i < 3; i++ {
		throw(t, s, "4")
	}
	if err := s.ConfirmTurn(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !s.State().GameOver {
		t.Fatalf("expected game over")
	}
	if len(history.results) != 1 {
		t.Fatalf("expected one game result, got %+v", history.results)
	}
	res := history.results[0]
	if res.Status != model.GameCompleted || res.Winner != 1 || res.Player1Score != 10 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := s.ThrowDart(ctx, game.Single, 20); !errors.Is(err, turn.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestGameEndRecordedWhenTurnLogFails(t *testing.T) {
	history := &fakeHistory{recordErr: errors.New("disk full")}
	s := newTestStore(t, almostFinished(), history)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		throw(t, s, "4")
	}
	if err := s.ConfirmTurn(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !s.State().GameOver {
		t.Fatalf("expected game over")
	}
	if len(history.turns) != 0 {
		t.Fatalf("expected no recorded turns, got %+v", history.turns)
	}
	if len(history.results) != 1 || history.results[0].Status != model.GameCompleted || history.results[0].Winner != 1 {
		t.Fatalf("expected a completed game, got %+v", history.results)
	}
}

func TestSubscribeStateReplaysLatest(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	throw(t, s, "20")
	throw(t, s, "19")

	states, cancel := s.SubscribeState()
	defer cancel()
	got := <-states
	if got.CurrentDart != 2 {
		t.Fatalf("expected the latest state on subscribe, got dart %d", got.CurrentDart)
	}

	throw(t, s, "18")
	if err := s.ResetTurn(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got = <-states
	if got.CurrentDart != 0 {
		t.Fatalf("expected only the newest state, got dart %d", got.CurrentDart)
	}
	select {
	case extra := <-states:
		t.Fatalf("unexpected queued state: %+v", extra)
	default:
	}
}

func TestSubscribeDialog(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	dialogs, cancel := s.SubscribeDialog()
	if _, ok := (<-dialogs).(turn.None); !ok {
		t.Fatalf("expected initial None")
	}
	for _, n := range []string{"M", "M", "M"} {
		throw(t, s, n)
	}
	if _, ok := (<-dialogs).(turn.TurnSummary); !ok {
		t.Fatalf("expected summary")
	}
	cancel()
	if _, open := <-dialogs; open {
		t.Fatalf("expected channel closed after cancel")
	}
	cancel()
}

func TestMessagesAreNotReplayedAndDropWhenFull(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	throw(t, s, "M")

	msgs, cancel := s.SubscribeMessages()
	defer cancel()
	select {
	case m := <-msgs:
		t.Fatalf("unexpected replayed message %q", m)
	default:
	}

	ctx := context.Background()
	for i := 0; i < messageBuffer+5; i++ {
		if err := s.ResetTurn(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
	}
	if got := len(msgs); got != messageBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", messageBuffer, got)
	}
	if m := <-msgs; m != "Turn reset successfully" {
		t.Fatalf("unexpected message %q", m)
	}
}

func TestInvalidInputPublishesMessage(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	msgs, cancel := s.SubscribeMessages()
	defer cancel()

	if err := s.SubmitNotation(context.Background(), "bogus"); !errors.Is(err, game.ErrInvalidNotation) {
		t.Fatalf("expected ErrInvalidNotation, got %v", err)
	}
	if err := s.SubmitNotation(context.Background(), "T21"); !errors.Is(err, game.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if err := s.ConfirmTurn(context.Background()); !errors.Is(err, turn.ErrInvalidChoiceContext) {
		t.Fatalf("expected ErrInvalidChoiceContext, got %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected two messages, got %d", len(msgs))
	}
	if s.State() != game.New() {
		t.Fatalf("state changed on rejected input")
	}
}

func TestCategoryLabel(t *testing.T) {
	s := newTestStore(t, &fakeSnaps{}, nil)
	if got := s.CategoryLabel(game.RowCircle); got != game.CategoryLabel(game.RowCircle) {
		t.Fatalf("unexpected label %q", got)
	}
}
