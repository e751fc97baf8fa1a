// Package session owns the live game: the current state, the pending dialog,
// the streams the TUI renders from, and the calls out to persistence.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/boomero/internal/game"
	"github.com/verte-zerg/boomero/internal/model"
	"github.com/verte-zerg/boomero/internal/turn"
)

// Snapshotter saves and restores the board between runs.
type Snapshotter interface {
	LoadSnapshot(ctx context.Context) (game.State, bool, error)
	SaveSnapshot(ctx context.Context, s game.State) error
}

// Recorder keeps the history of confirmed turns and finished games.
type Recorder interface {
	RecordTurn(ctx context.Context, rec model.TurnRecord) (int64, error)
	EndGame(ctx context.Context, result model.GameResult) error
}

// messageBuffer is how many unread messages a subscriber may hold before new
// ones are dropped for it.
const messageBuffer = 16

// Store holds the single live game. Every command is applied under one lock
// so subscribers never observe a half-applied turn.
type Store struct {
	mu      sync.Mutex
	machine *turn.Machine
	snaps   Snapshotter
	history Recorder
	log     zerolog.Logger
	now     func() time.Time

	state  game.State
	dialog turn.Dialog

	stateSubs   map[int]chan game.State
	dialogSubs  map[int]chan turn.Dialog
	messageSubs map[int]chan string
	nextSub     int
}

// Options configure a Store.
type Options struct {
	Turn turn.Options
	// History may be nil, in which case turns are not recorded.
	History Recorder
	Logger  zerolog.Logger
}

// New restores the saved game from snaps, or starts a new one when nothing
// usable was saved.
func New(ctx context.Context, snaps Snapshotter, opts Options) *Store {
	s := &Store{
		machine:     turn.NewMachine(opts.Turn),
		snaps:       snaps,
		history:     opts.History,
		log:         opts.Logger.With().Str("component", "session").Logger(),
		now:         time.Now,
		stateSubs:   map[int]chan game.State{},
		dialogSubs:  map[int]chan turn.Dialog{},
		messageSubs: map[int]chan string{},
	}
	s.state, s.dialog = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) (game.State, turn.Dialog) {
	if s.snaps == nil {
		return game.New(), turn.None{}
	}
	saved, ok, err := s.snaps.LoadSnapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load snapshot, starting a new game")
		return game.New(), turn.None{}
	}
	if !ok {
		s.log.Info().Msg("no snapshot, starting a new game")
		return game.New(), turn.None{}
	}
	st, d := turn.Restore(saved)
	s.log.Info().
		Int("player1", st.Player1Score).
		Int("player2", st.Player2Score).
		Int("dart", st.CurrentDart).
		Msg("restored snapshot")
	return st, d
}

// State returns the current game state.
func (s *Store) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dialog returns the pending dialog.
func (s *Store) Dialog() turn.Dialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialog
}

// CategoryLabel returns the board label of a matrix row.
func (s *Store) CategoryLabel(row int) string {
	return game.CategoryLabel(row)
}

// ThrowDart records a dart for the current player.
func (s *Store) ThrowDart(ctx context.Context, kind game.Kind, value int) error {
	return s.apply(ctx, turn.Throw{Kind: kind, Value: value})
}

// SubmitNotation parses a dart in short notation, such as T20 or DB, and
// throws it.
func (s *Store) SubmitNotation(ctx context.Context, input string) error {
	th, err := game.ParseThrow(input)
	if err != nil {
		s.mu.Lock()
		s.publishMessages([]string{"Unrecognised dart " + strings.TrimSpace(input) + ". Try 20, D16, T19, SB, DB or M."})
		s.mu.Unlock()
		return err
	}
	return s.ThrowDart(ctx, th.Kind, th.Value)
}

// ResolveDoubleChoice answers a pending double.
func (s *Store) ResolveDoubleChoice(ctx context.Context, number, dartIndex int, useCategory bool) error {
	return s.apply(ctx, turn.ChooseDouble{Number: number, DartIndex: dartIndex, UseCategory: useCategory})
}

// ResolveTripleChoice answers a pending triple.
func (s *Store) ResolveTripleChoice(ctx context.Context, number, dartIndex int, useCategory bool) error {
	return s.apply(ctx, turn.ChooseTriple{Number: number, DartIndex: dartIndex, UseCategory: useCategory})
}

// ResolveCircleChoice answers a circle offer.
func (s *Store) ResolveCircleChoice(ctx context.Context, useCircle bool) error {
	return s.apply(ctx, turn.ChooseCircle{UseCircle: useCircle})
}

// ConfirmTurn commits the summarised turn.
func (s *Store) ConfirmTurn(ctx context.Context) error {
	return s.apply(ctx, turn.Confirm{})
}

// ResetTurn takes back the current turn.
func (s *Store) ResetTurn(ctx context.Context) error {
	return s.apply(ctx, turn.Reset{})
}

// DismissDialog closes the pending dialog without answering it.
func (s *Store) DismissDialog(ctx context.Context) error {
	return s.apply(ctx, turn.Dismiss{})
}

// NewGame abandons the current game and starts over.
func (s *Store) NewGame(ctx context.Context) error {
	return s.apply(ctx, turn.NewGame{})
}

func (s *Store) apply(ctx context.Context, cmd turn.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	res, err := s.machine.Apply(s.state, s.dialog, cmd)
	s.publishMessages(res.Notices)
	if err != nil {
		if errors.Is(err, turn.ErrInvalidChoiceContext) {
			s.log.Warn().Err(err).Str("phase", turn.PhaseOf(s.state, s.dialog).String()).Msg("rejected command")
		} else {
			s.log.Debug().Err(err).Msg("rejected command")
		}
		return err
	}

	switch cmd.(type) {
	case turn.Confirm:
		s.recordTurn(ctx, prev, res.State)
	case turn.NewGame:
		s.endGame(ctx, prev, model.GameAbandoned)
	}

	s.state, s.dialog = res.State, res.Dialog
	if res.Persist {
		s.save(ctx)
	}
	s.publishState()
	return nil
}

func (s *Store) save(ctx context.Context) {
	if s.snaps == nil {
		return
	}
	if err := s.snaps.SaveSnapshot(ctx, s.state); err != nil {
		s.log.Error().Err(err).Msg("save snapshot")
	}
}

func (s *Store) recordTurn(ctx context.Context, before, after game.State) {
	if s.history == nil {
		return
	}
	rec := model.TurnRecord{
		Player:     int(before.CurrentPlayer),
		Points:     before.PointsThisTurn,
		Marks:      game.TurnMarks(before),
		Darts:      turnNotation(before),
		RecordedAt: s.now(),
	}
	if id, err := s.history.RecordTurn(ctx, rec); err != nil {
		s.log.Warn().Err(err).Msg("record turn")
	} else {
		s.log.Debug().Int64("game", id).Int("player", rec.Player).Int("points", rec.Points).Msg("recorded turn")
	}
	if after.GameOver && !before.GameOver {
		s.endGame(ctx, after, model.GameCompleted)
	}
}

func (s *Store) endGame(ctx context.Context, st game.State, status model.GameStatus) {
	if s.history == nil {
		return
	}
	result := model.GameResult{
		Status:       status,
		Player1Score: st.Player1Score,
		Player2Score: st.Player2Score,
		EndedAt:      s.now(),
	}
	if status == model.GameCompleted {
		result.Winner = int(game.Leader(st))
	}
	if err := s.history.EndGame(ctx, result); err != nil {
		s.log.Warn().Err(err).Str("status", string(status)).Msg("end game")
	}
}

func turnNotation(st game.State) string {
	parts := make([]string, 0, game.DartsPerTurn+1)
	circle := true
	for _, d := range st.Darts {
		if d == nil {
			circle = false
			continue
		}
		parts = append(parts, game.Notation(*d))
		circle = circle && d.ScoredAsCircle
	}
	if circle {
		parts = append(parts, "(circle)")
	}
	return strings.Join(parts, " ")
}
