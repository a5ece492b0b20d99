package results

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestInterpretHeadToHeadScoreBased(t *testing.T) {
	reg := NewDefaultRegistry()

	got, err := reg.Interpret(models.FormatHeadToHead,
		raw(`{"mode":"SCORE_BASED","scores":{"A":3,"B":1}}`), []string{"A", "B"})
	require.NoError(t, err)

	want := []models.RankEntry{{ParticipantID: "A", Rank: 1}, {ParticipantID: "B", Rank: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpretTimeBased(t *testing.T) {
	reg := NewDefaultRegistry()

	got, err := reg.Interpret(models.FormatTimeBased,
		raw(`{"times":{"C":11.89,"A":11.23,"B":11.45}}`), []string{"A", "B", "C"})
	require.NoError(t, err)

	want := []models.RankEntry{{ParticipantID: "A", Rank: 1}, {ParticipantID: "B", Rank: 2}, {ParticipantID: "C", Rank: 3}}
	assert.Equal(t, want, got)
}

func TestTimeBasedTiesShareRank(t *testing.T) {
	got, err := TimeBased{}.Process(raw(`{"times":{"A":10,"B":10,"C":12}}`))
	require.NoError(t, err)
	assert.Equal(t, []models.RankEntry{{ParticipantID: "A", Rank: 1}, {ParticipantID: "B", Rank: 1}, {ParticipantID: "C", Rank: 3}}, got)
}

func TestHeadToHeadDrawRanksBothFirst(t *testing.T) {
	reg := NewDefaultRegistry()

	for name, payload := range map[string]string{
		"outcomes": `{"mode":"WIN_LOSS","outcomes":{"A":"DRAW","B":"DRAW"}}`,
		"scores":   `{"mode":"SCORE_BASED","scores":{"A":2,"B":2}}`,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := reg.Interpret(models.FormatHeadToHead, raw(payload), []string{"A", "B"})
			require.NoError(t, err)
			assert.Equal(t, []models.RankEntry{{ParticipantID: "A", Rank: 1}, {ParticipantID: "B", Rank: 1}}, got)
		})
	}
}

func TestHeadToHeadWinLoss(t *testing.T) {
	got, err := NewDefaultRegistry().Interpret(models.FormatHeadToHead,
		raw(`{"mode":"WIN_LOSS","outcomes":{"A":"LOSS","B":"WIN"}}`), []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []models.RankEntry{{ParticipantID: "B", Rank: 1}, {ParticipantID: "A", Rank: 2}}, got)
}

func TestIndividualRanking(t *testing.T) {
	payload := raw(`{"placements":[
		{"participant_id":"p3","placement":1},
		{"participant_id":"p1","placement":3},
		{"participant_id":"p2","placement":2}]}`)

	got, err := NewDefaultRegistry().Interpret(models.FormatIndividualRanking, payload, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, []models.RankEntry{{ParticipantID: "p3", Rank: 1}, {ParticipantID: "p2", Rank: 2}, {ParticipantID: "p1", Rank: 3}}, got)
}

func TestTeamMatchGivesMembersTeamRank(t *testing.T) {
	payload := raw(`{"assignments":{"a1":"A","a2":"A","b1":"B","b2":"B"},"team_scores":{"A":1,"B":4}}`)

	got, err := NewDefaultRegistry().Interpret(models.FormatTeamMatch, payload, []string{"a1", "a2", "b1", "b2"})
	require.NoError(t, err)
	assert.Equal(t, []models.RankEntry{{ParticipantID: "b1", Rank: 1}, {ParticipantID: "b2", Rank: 1}, {ParticipantID: "a1", Rank: 2}, {ParticipantID: "a2", Rank: 2}}, got)
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name     string
		format   models.ResultFormat
		payload  string
		expected []string
		field    string
	}{
		{"placements not contiguous", models.FormatIndividualRanking,
			`{"placements":[{"participant_id":"A","placement":1},{"participant_id":"B","placement":3}]}`,
			[]string{"A", "B"}, "placements"},
		{"duplicate placement", models.FormatIndividualRanking,
			`{"placements":[{"participant_id":"A","placement":1},{"participant_id":"B","placement":1}]}`,
			[]string{"A", "B"}, "placements"},
		{"missing participant", models.FormatIndividualRanking,
			`{"placements":[{"participant_id":"A","placement":1}]}`,
			[]string{"A", "B"}, "participants"},
		{"inconsistent outcomes", models.FormatHeadToHead,
			`{"mode":"WIN_LOSS","outcomes":{"A":"WIN","B":"WIN"}}`,
			[]string{"A", "B"}, "outcomes"},
		{"unknown mode", models.FormatHeadToHead,
			`{"mode":"BEST_OF","scores":{"A":1,"B":0}}`,
			[]string{"A", "B"}, "mode"},
		{"three participants head to head", models.FormatHeadToHead,
			`{"mode":"SCORE_BASED","scores":{"A":1,"B":0,"C":2}}`,
			[]string{"A", "B", "C"}, "participants"},
		{"empty team", models.FormatTeamMatch,
			`{"assignments":{"a1":"A","a2":"A"},"team_scores":{"A":1,"B":0}}`,
			[]string{"a1", "a2"}, "teams"},
		{"unassigned team member", models.FormatTeamMatch,
			`{"assignments":{"a1":"A","b1":"B"},"team_scores":{"A":1,"B":0}}`,
			[]string{"a1", "b1", "b2"}, "assignments"},
		{"non-positive time", models.FormatTimeBased,
			`{"times":{"A":0,"B":11.2}}`,
			[]string{"A", "B"}, "times"},
		{"unexpected participant", models.FormatTimeBased,
			`{"times":{"A":10.1,"X":11.2}}`,
			[]string{"A", "B"}, "times"},
		{"unknown field", models.FormatTimeBased,
			`{"times":{"A":10.1},"laps":3}`,
			[]string{"A"}, "payload"},
		{"malformed json", models.FormatTimeBased,
			`{"times":`,
			[]string{"A"}, "payload"},
	}

	reg := NewDefaultRegistry()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Interpret(tc.format, raw(tc.payload), tc.expected)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestSkillRatingNotImplemented(t *testing.T) {
	_, err := NewDefaultRegistry().Interpret(models.FormatSkillRating, raw(`{}`), []string{"A"})
	assert.ErrorIs(t, err, ErrFormatNotImplemented)
}

type fixedStrategy struct{}

func (fixedStrategy) Format() models.ResultFormat { return models.FormatSkillRating }

func (fixedStrategy) Validate(json.RawMessage, []string) error { return nil }

func (fixedStrategy) Process(json.RawMessage) ([]models.RankEntry, error) {
	return []models.RankEntry{{ParticipantID: "A", Rank: 1}}, nil
}

func TestRegisterAddsFormat(t *testing.T) {
	reg := NewDefaultRegistry()
	reg.Register(fixedStrategy{})

	got, err := reg.Interpret(models.FormatSkillRating, raw(`{}`), []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, []models.RankEntry{{ParticipantID: "A", Rank: 1}}, got)
}

func TestProcessIsDeterministic(t *testing.T) {
	payload := raw(`{"times":{"d":9.5,"a":9.5,"c":8,"b":12,"e":9.5}}`)

	first, err := TimeBased{}.Process(payload)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := TimeBased{}.Process(payload)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	assert.Equal(t, []models.RankEntry{{ParticipantID: "c", Rank: 1}, {ParticipantID: "a", Rank: 2}, {ParticipantID: "d", Rank: 2}, {ParticipantID: "e", Rank: 2}, {ParticipantID: "b", Rank: 5}}, first)
}

func TestTeamMatchCheckSides(t *testing.T) {
	sides := [][]string{{"a1", "a2"}, {"b1", "b2"}}
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"teams follow sides", `{"assignments":{"a1":"A","a2":"A","b1":"B","b2":"B"},"team_scores":{"A":2,"B":1}}`, false},
		{"teams swapped", `{"assignments":{"a1":"B","a2":"B","b1":"A","b2":"A"},"team_scores":{"A":2,"B":1}}`, false},
		{"absent member ignored", `{"assignments":{"a1":"A","b1":"B","b2":"B"},"team_scores":{"A":2,"B":1}}`, false},
		{"side split", `{"assignments":{"a1":"A","a2":"B","b1":"B","b2":"B"},"team_scores":{"A":2,"B":1}}`, true},
		{"team spans sides", `{"assignments":{"a1":"A","b1":"A"},"team_scores":{"A":2,"B":1}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TeamMatch{}.CheckSides(json.RawMessage(tt.payload), sides)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "assignments")
		})
	}
}
