package results

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
)

type timeBasedPayload struct {
	Times map[string]float64 `json:"times"`
}

// TimeBased ranks participants by elapsed seconds, fastest first. Equal times
// share a rank and the following rank is skipped.
type TimeBased struct{}

func (TimeBased) Format() models.ResultFormat {
	return models.FormatTimeBased
}

func (TimeBased) Validate(payload json.RawMessage, expected []string) error {
	var p timeBasedPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	fe := fieldErrors{}
	checkParticipants(fe, "times", keys(p.Times), expected)
	for _, id := range keys(p.Times) {
		t := p.Times[id]
		if t <= 0 || math.IsInf(t, 0) || math.IsNaN(t) {
			fe.add("times", "time of %q must be a positive number of seconds", id)
		}
	}
	return fe.err()
}

func (TimeBased) Process(payload json.RawMessage) ([]models.RankEntry, error) {
	var p timeBasedPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	ids := keys(p.Times)
	sort.SliceStable(ids, func(i, j int) bool { return p.Times[ids[i]] < p.Times[ids[j]] })
	return competitionRanks(ids, func(i int) bool {
		return p.Times[ids[i]] == p.Times[ids[i-1]]
	}), nil
}
