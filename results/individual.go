package results

import (
	"encoding/json"

	"github.com/Dosada05/tournament-progression/models"
)

type placement struct {
	ParticipantID string `json:"participant_id"`
	Placement     int    `json:"placement"`
}

type individualPayload struct {
	Placements []placement `json:"placements"`
}

// IndividualRanking handles free-for-all results where every participant gets
// an explicit finishing place.
type IndividualRanking struct{}

func (IndividualRanking) Format() models.ResultFormat {
	return models.FormatIndividualRanking
}

func (IndividualRanking) Validate(payload json.RawMessage, expected []string) error {
	var p individualPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	fe := fieldErrors{}
	if len(p.Placements) == 0 {
		fe.add("placements", "must not be empty")
		return fe.err()
	}

	ids := make([]string, 0, len(p.Placements))
	taken := make(map[int]bool, len(p.Placements))
	for _, pl := range p.Placements {
		ids = append(ids, pl.ParticipantID)
		switch {
		case pl.Placement < 1 || pl.Placement > len(p.Placements):
			fe.add("placements", "placement %d out of range 1..%d", pl.Placement, len(p.Placements))
		case taken[pl.Placement]:
			fe.add("placements", "placement %d assigned more than once", pl.Placement)
		default:
			taken[pl.Placement] = true
		}
	}
	checkParticipants(fe, "participants", ids, expected)
	return fe.err()
}

func (IndividualRanking) Process(payload json.RawMessage) ([]models.RankEntry, error) {
	var p individualPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	out := make([]models.RankEntry, 0, len(p.Placements))
	for _, pl := range p.Placements {
		out = append(out, models.RankEntry{ParticipantID: pl.ParticipantID, Rank: pl.Placement})
	}
	return sortRanking(out), nil
}
