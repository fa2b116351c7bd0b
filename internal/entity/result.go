package entity

import "time"

// MatchResult is the record of a finished game.
type MatchResult struct {
	ID          string    `json:"id"`
	FirstAgent  string    `json:"first_agent"`
	SecondAgent string    `json:"second_agent"`
	FirstCount  int       `json:"first_count"`
	SecondCount int       `json:"second_count"`
	Outcome     Outcome   `json:"outcome"`
	Moves       int       `json:"moves"`
	FinishedAt  time.Time `json:"finished_at"`
}

type Tally struct {
	FirstWins  int `json:"first_wins"`
	SecondWins int `json:"second_wins"`
	Draws      int `json:"draws"`
}

func (that *Tally) Add(outcome Outcome) {
	switch outcome {
	case OutcomeFirstWins:
		that.FirstWins++
	case OutcomeSecondWins:
		that.SecondWins++
	case OutcomeDraw:
		that.Draws++
	}
}

func (that Tally) Games() int {
	return that.FirstWins + that.SecondWins + that.Draws
}
