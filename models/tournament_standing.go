package models

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeDraw Outcome = "DRAW"
	OutcomeLoss Outcome = "LOSS"
)

// GroupStanding is a participant's line in a group table. It is read-only
// input for seeding.
type GroupStanding struct {
	ID             int                `json:"id,omitempty" db:"id" yaml:"-"`
	TournamentID   int                `json:"tournament_id,omitempty" db:"tournament_id" yaml:"-"`
	GroupID        string             `json:"group_id" db:"group_id" yaml:"group"`
	ParticipantID  string             `json:"participant_id" db:"participant_id" yaml:"participant"`
	Points         int                `json:"points" db:"points" yaml:"points"`
	Wins           int                `json:"wins" db:"wins" yaml:"wins"`
	Draws          int                `json:"draws" db:"draws" yaml:"draws"`
	Losses         int                `json:"losses" db:"losses" yaml:"losses"`
	ScoreFor       int                `json:"score_for" db:"score_for" yaml:"score_for"`
	ScoreAgainst   int                `json:"score_against" db:"score_against" yaml:"score_against"`
	GoalDifference int                `json:"goal_difference" db:"goal_difference" yaml:"goal_difference"`
	HeadToHead     map[string]Outcome `json:"head_to_head,omitempty" db:"head_to_head" yaml:"head_to_head"`
	UpdatedAt      time.Time          `json:"updated_at,omitempty" db:"updated_at" yaml:"-"`
}

// HeadToHeadScore is the net result against the given opponents
// (+1 win, 0 draw, -1 loss). Opponents never met count as 0.
func (s *GroupStanding) HeadToHeadScore(opponents ...string) int {
	score := 0
	for _, o := range opponents {
		switch s.HeadToHead[o] {
		case OutcomeWin:
			score++
		case OutcomeLoss:
			score--
		}
	}
	return score
}
