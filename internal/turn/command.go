package turn

import "github.com/verte-zerg/boomero/internal/game"

// Command is one request from the presentation layer.
type Command interface {
	isCommand()
}

// Throw records a dart.
type Throw struct {
	Kind  game.Kind
	Value int
}

// ChooseDouble answers a DoubleChoice.
type ChooseDouble struct {
	Number      int
	DartIndex   int
	UseCategory bool
}

// ChooseTriple answers a TripleChoice.
type ChooseTriple struct {
	Number      int
	DartIndex   int
	UseCategory bool
}

// ChooseCircle answers a CircleChoice.
type ChooseCircle struct {
	UseCircle bool
}

// Confirm commits the summarised turn.
type Confirm struct{}

// Reset takes back the current turn.
type Reset struct{}

// Dismiss closes the pending dialog without answering it.
type Dismiss struct{}

// NewGame discards the current game.
type NewGame struct{}

func (Throw) isCommand()        {}
func (ChooseDouble) isCommand() {}
func (ChooseTriple) isCommand() {}
func (ChooseCircle) isCommand() {}
func (Confirm) isCommand()      {}
func (Reset) isCommand()        {}
func (Dismiss) isCommand()      {}
func (NewGame) isCommand()      {}
