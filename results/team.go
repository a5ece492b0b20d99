package results

import (
	"encoding/json"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
)

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

type teamPayload struct {
	Assignments map[string]Team  `json:"assignments"`
	TeamScores  map[Team]float64 `json:"team_scores"`
}

// TeamMatch handles two-team matches. Every member of a team gets the team's
// rank.
type TeamMatch struct{}

func (TeamMatch) Format() models.ResultFormat {
	return models.FormatTeamMatch
}

func (TeamMatch) Validate(payload json.RawMessage, expected []string) error {
	var p teamPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	fe := fieldErrors{}
	checkParticipants(fe, "assignments", keys(p.Assignments), expected)

	sizes := map[Team]int{}
	for id, t := range p.Assignments {
		if t != TeamA && t != TeamB {
			fe.add("assignments", "participant %q assigned to unknown team %q", id, t)
			continue
		}
		sizes[t]++
	}
	if sizes[TeamA] == 0 || sizes[TeamB] == 0 {
		fe.add("teams", "both teams need at least one participant")
	}

	for _, t := range []Team{TeamA, TeamB} {
		s, ok := p.TeamScores[t]
		switch {
		case !ok:
			fe.add("team_scores", "missing score for team %s", t)
		case s < 0:
			fe.add("team_scores", "score of team %s must not be negative", t)
		}
	}
	if len(p.TeamScores) > 2 {
		fe.add("team_scores", "only teams A and B are allowed")
	}
	return fe.err()
}

func (TeamMatch) Process(payload json.RawMessage) ([]models.RankEntry, error) {
	var p teamPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	ranks := map[Team]int{TeamA: 1, TeamB: 1}
	switch a, b := p.TeamScores[TeamA], p.TeamScores[TeamB]; {
	case a > b:
		ranks[TeamB] = 2
	case b > a:
		ranks[TeamA] = 2
	}

	out := make([]models.RankEntry, 0, len(p.Assignments))
	for id, t := range p.Assignments {
		out = append(out, models.RankEntry{ParticipantID: id, Rank: ranks[t]})
	}
	return sortRanking(out), nil
}

// CheckSides verifies that each team of the payload is made of one side of
// the match only. sides holds the participant IDs of every side; members
// missing from the payload are ignored.
func (TeamMatch) CheckSides(payload json.RawMessage, sides [][]string) error {
	var p teamPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	owner := map[Team]int{}
	for i, side := range sides {
		var team Team
		for _, id := range side {
			t, ok := p.Assignments[id]
			if !ok {
				continue
			}
			if team != "" && t != team {
				return NewValidationError("assignments", fmt.Sprintf("side %d is split across teams %s and %s", i+1, team, t))
			}
			team = t
		}
		if team == "" {
			continue
		}
		if prev, taken := owner[team]; taken {
			return NewValidationError("assignments", fmt.Sprintf("team %s mixes sides %d and %d", team, prev+1, i+1))
		}
		owner[team] = i
	}
	return nil
}
