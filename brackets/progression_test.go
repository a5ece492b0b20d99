package brackets

import (
	"testing"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play resolves a match's slots and records winner over loser.
func play(m *models.Match, winner, loser string) {
	m.Slots[0].ParticipantIDs = []string{winner}
	m.Slots[1].ParticipantIDs = []string{loser}
	m.Ranking = []models.RankEntry{{ParticipantID: winner, Rank: 1}, {ParticipantID: loser, Rank: 2}}
	now := time.Now()
	m.RecordedAt = &now
}

func TestPlanAdvancementWaitsForSibling(t *testing.T) {
	matches := generate(t, 1, "A", "B", "C", "D", "A", "B", "C", "D")
	all := byID(matches)
	play(all["t1-R2M1"], "W1", "L1")

	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	plan, err := PlanAdvancement(g, "t1-R2M1")
	require.NoError(t, err)
	assert.Empty(t, plan.Ready)
	assert.Equal(t, []string{"t1-R3M1", "t1-BRONZE"}, plan.Waiting)
	assert.True(t, plan.HasDependents())
}

func TestPlanAdvancementFinalAndBronze(t *testing.T) {
	matches := generate(t, 1, "A", "B", "C", "D", "A", "B", "C", "D")
	all := byID(matches)
	play(all["t1-R2M1"], "W1", "L1")
	play(all["t1-R2M2"], "W2", "L2")

	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	plan, err := PlanAdvancement(g, "t1-R2M2")
	require.NoError(t, err)
	assert.Empty(t, plan.Waiting)
	require.Len(t, plan.Ready, 1)

	round := plan.Ready[0]
	assert.Equal(t, 1, round.TournamentID)
	assert.Equal(t, 3, round.Round)
	assert.Equal(t, []models.SlotAssignment{
		{MatchID: "t1-R3M1", Slots: [][]string{{"W1"}, {"W2"}}},
		{MatchID: "t1-BRONZE", Slots: [][]string{{"L1"}, {"L2"}}},
	}, round.Assignments)
}

func TestPlanAdvancementSkipsMaterialized(t *testing.T) {
	matches := generate(t, 1, "A", "B", "C", "D", "A", "B", "C", "D")
	all := byID(matches)
	play(all["t1-R2M1"], "W1", "L1")
	play(all["t1-R2M2"], "W2", "L2")
	now := time.Now()
	all["t1-R3M1"].MaterializedAt = &now
	all["t1-BRONZE"].MaterializedAt = &now

	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	plan, err := PlanAdvancement(g, "t1-R2M1")
	require.NoError(t, err)
	assert.Empty(t, plan.Ready)
	assert.Equal(t, []string{"t1-R3M1", "t1-BRONZE"}, plan.AlreadyMaterialized)
}

func TestPlanAdvancementFinalHasNoDependents(t *testing.T) {
	matches := generate(t, 1, "A", "B", "A", "B")
	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	plan, err := PlanAdvancement(g, "t1-R2M1")
	require.NoError(t, err)
	assert.False(t, plan.HasDependents())

	_, err = PlanAdvancement(g, "t1-R9M9")
	assert.Error(t, err)
}

func TestPlanAdvancementAmbiguousFeeder(t *testing.T) {
	matches := generate(t, 1, "A", "B", "A", "B")
	all := byID(matches)
	play(all["t1-R1M1"], "W1", "L1")
	play(all["t1-R1M2"], "W2", "L2")
	all["t1-R1M2"].Ranking = []models.RankEntry{{ParticipantID: "L2", Rank: 1}, {ParticipantID: "W2", Rank: 1}}

	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	_, err = PlanAdvancement(g, "t1-R1M1")
	assert.ErrorIs(t, err, ErrAdvancementAmbiguous)
}

func TestDetermineAdvancers(t *testing.T) {
	t.Run("single winner", func(t *testing.T) {
		adv, err := DetermineAdvancers(models.FormatHeadToHead, []string{"a", "b"},
			[]models.RankEntry{{ParticipantID: "a", Rank: 2}, {ParticipantID: "b", Rank: 1}})
		require.NoError(t, err)
		assert.Equal(t, Advancers{Winners: []string{"b"}, Losers: []string{"a"}}, adv)
	})
	t.Run("draw", func(t *testing.T) {
		_, err := DetermineAdvancers(models.FormatHeadToHead, []string{"a", "b"},
			[]models.RankEntry{{ParticipantID: "a", Rank: 1}, {ParticipantID: "b", Rank: 1}})
		assert.ErrorIs(t, err, ErrAdvancementAmbiguous)
	})
	t.Run("team advances together", func(t *testing.T) {
		adv, err := DetermineAdvancers(models.FormatTeamMatch, []string{"a1", "a2", "b1", "b2"},
			[]models.RankEntry{{ParticipantID: "a1", Rank: 1}, {ParticipantID: "a2", Rank: 1}, {ParticipantID: "b1", Rank: 2}, {ParticipantID: "b2", Rank: 2}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2"}, adv.Winners)
		assert.Equal(t, []string{"b1", "b2"}, adv.Losers)
	})
	t.Run("team draw", func(t *testing.T) {
		_, err := DetermineAdvancers(models.FormatTeamMatch, []string{"a1", "b1"},
			[]models.RankEntry{{ParticipantID: "a1", Rank: 1}, {ParticipantID: "b1", Rank: 1}})
		assert.ErrorIs(t, err, ErrAdvancementAmbiguous)
	})
	t.Run("no-show loses", func(t *testing.T) {
		adv, err := DetermineAdvancers(models.FormatIndividualRanking, []string{"a", "b"},
			[]models.RankEntry{{ParticipantID: "a", Rank: 1}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, adv.Losers)
	})
	t.Run("empty ranking", func(t *testing.T) {
		_, err := DetermineAdvancers(models.FormatTimeBased, []string{"a"}, nil)
		assert.ErrorIs(t, err, ErrAdvancementAmbiguous)
	})
}

func TestNewFeederGraphUnknownFeeder(t *testing.T) {
	missing := "t1-R1M9"
	_, err := NewFeederGraph([]*models.Match{{
		ID:    "t1-R2M1",
		Slots: []models.MatchSlot{{Source: models.SlotSourceWinner, SourceMatchID: &missing}},
	}})
	assert.ErrorIs(t, err, ErrUnknownFeeder)
}
