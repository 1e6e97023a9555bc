package game

// Player identifies one side of a two-player game.
type Player uint8

const (
	NoPlayer Player = iota
	First
	Second
)

// Opponent returns the other side. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	}
	return NoPlayer
}

func (p Player) String() string {
	switch p {
	case First:
		return "First"
	case Second:
		return "Second"
	}
	return "NoPlayer"
}

// Outcome is the coarse result of a position.
type Outcome uint8

const (
	InProgress Outcome = iota
	Draw
	Won
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "InProgress"
	case Draw:
		return "Draw"
	case Won:
		return "Won"
	}
	return "UNKNOWN OUTCOME"
}

// Status is the terminal status of a state. Winner is only meaningful when Outcome is Won.
type Status struct {
	Outcome Outcome
	Winner  Player
}

// Ongoing, Drawn and WonBy build the three possible statuses.
func Ongoing() Status       { return Status{Outcome: InProgress} }
func Drawn() Status         { return Status{Outcome: Draw} }
func WonBy(p Player) Status { return Status{Outcome: Won, Winner: p} }

// IsTerminal returns true if no further actions are possible.
func (s Status) IsTerminal() bool { return s.Outcome != InProgress }

// Action is a move encoded as an index into the game's fixed action space.
// The same index is the predictor output slot for that move.
type Action int32

// DefaultExplorationFactor is the PUCT constant for games that do not tune it.
const DefaultExplorationFactor = 1.0

// State is any game that implements these and is able to report back.
//
// Apply is only ever called with an action returned by the immediately preceding
// call to Actions. Actions returns nothing once Status is terminal.
type State interface {
	ActionSpace() int  // returns the number of permissible actions
	Actions() []Action // legal actions from this state, in a fixed order
	Apply(a Action)    // mutates the state. The player to move has to change.
	Status() Status    // InProgress, Draw or Won
	Player() Player    // the player to move next
	ExplorationFactor() float64

	Clone() State
}

// Encoder projects a state onto a fixed length vector for a predictor.
type Encoder func(s State) []float32
