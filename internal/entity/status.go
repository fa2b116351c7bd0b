package entity

// Status is the human-readable state of a game.
type Status string

const (
	StatusIdle           Status = ""
	StatusAwaitingFirst  Status = "awaiting first-player input"
	StatusAwaitingSecond Status = "awaiting second-player input"
	StatusFirstWins      Status = "first player wins"
	StatusSecondWins     Status = "second player wins"
	StatusDraw           Status = "draw"
)

func AwaitingStatus(side Side) Status {
	if side == SideSecond {
		return StatusAwaitingSecond
	}
	return StatusAwaitingFirst
}

func (that Status) IsFinished() bool {
	return that == StatusFirstWins || that == StatusSecondWins || that == StatusDraw
}

func (that Status) IsAwaiting() bool {
	return that == StatusAwaitingFirst || that == StatusAwaitingSecond
}

type Outcome string

const (
	OutcomeFirstWins  Outcome = "first"
	OutcomeSecondWins Outcome = "second"
	OutcomeDraw       Outcome = "draw"
)

func (that Outcome) Status() Status {
	switch that {
	case OutcomeFirstWins:
		return StatusFirstWins
	case OutcomeSecondWins:
		return StatusSecondWins
	case OutcomeDraw:
		return StatusDraw
	default:
		return StatusIdle
	}
}

// Winner returns the winning side, or false on a draw.
func (that Outcome) Winner() (Side, bool) {
	switch that {
	case OutcomeFirstWins:
		return SideFirst, true
	case OutcomeSecondWins:
		return SideSecond, true
	default:
		return SideFirst, false
	}
}
