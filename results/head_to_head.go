package results

import (
	"encoding/json"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
)

type HeadToHeadMode string

const (
	ModeWinLoss    HeadToHeadMode = "WIN_LOSS"
	ModeScoreBased HeadToHeadMode = "SCORE_BASED"
)

type headToHeadPayload struct {
	Mode     HeadToHeadMode            `json:"mode"`
	Outcomes map[string]models.Outcome `json:"outcomes,omitempty"`
	Scores   map[string]float64        `json:"scores,omitempty"`
}

// HeadToHead handles two-sided matches decided either by declared outcomes or
// by comparing scores. A draw ranks both sides first.
type HeadToHead struct{}

func (HeadToHead) Format() models.ResultFormat {
	return models.FormatHeadToHead
}

func (HeadToHead) Validate(payload json.RawMessage, expected []string) error {
	var p headToHeadPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	fe := fieldErrors{}
	if len(expected) != 2 {
		fe.add("participants", "head-to-head needs exactly two participants, got %d", len(expected))
	}

	switch p.Mode {
	case ModeWinLoss:
		if len(p.Scores) > 0 {
			fe.add("scores", "not allowed in %s mode", ModeWinLoss)
		}
		checkParticipants(fe, "outcomes", keys(p.Outcomes), expected)
		validateOutcomes(fe, p.Outcomes)
	case ModeScoreBased:
		if len(p.Outcomes) > 0 {
			fe.add("outcomes", "not allowed in %s mode", ModeScoreBased)
		}
		checkParticipants(fe, "scores", keys(p.Scores), expected)
		for id, s := range p.Scores {
			if s < 0 {
				fe.add("scores", "score of %q must not be negative", id)
			}
		}
	default:
		fe.add("mode", "must be %s or %s", ModeWinLoss, ModeScoreBased)
	}
	return fe.err()
}

func validateOutcomes(fe fieldErrors, outcomes map[string]models.Outcome) {
	counts := make(map[models.Outcome]int, 3)
	for id, o := range outcomes {
		switch o {
		case models.OutcomeWin, models.OutcomeLoss, models.OutcomeDraw:
			counts[o]++
		default:
			fe.add("outcomes", "unknown outcome %q for %q", o, id)
			return
		}
	}
	if len(outcomes) != 2 {
		return
	}
	consistent := (counts[models.OutcomeWin] == 1 && counts[models.OutcomeLoss] == 1) ||
		counts[models.OutcomeDraw] == 2
	if !consistent {
		fe.add("outcomes", "must be one WIN and one LOSS, or two DRAW")
	}
}

func (HeadToHead) Process(payload json.RawMessage) ([]models.RankEntry, error) {
	var p headToHeadPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	out := make([]models.RankEntry, 0, 2)
	switch p.Mode {
	case ModeWinLoss:
		for id, o := range p.Outcomes {
			rank := 1
			if o == models.OutcomeLoss {
				rank = 2
			}
			out = append(out, models.RankEntry{ParticipantID: id, Rank: rank})
		}
	case ModeScoreBased:
		ids := keys(p.Scores)
		sort.SliceStable(ids, func(i, j int) bool { return p.Scores[ids[i]] > p.Scores[ids[j]] })
		return competitionRanks(ids, func(i int) bool {
			return p.Scores[ids[i]] == p.Scores[ids[i-1]]
		}), nil
	default:
		return nil, NewValidationError("mode", "must be "+string(ModeWinLoss)+" or "+string(ModeScoreBased))
	}
	return sortRanking(out), nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
