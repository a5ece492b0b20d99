package brackets

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, tournamentID int, groups ...string) []*models.Match {
	t.Helper()
	plan, err := CalculateStructure(len(groups))
	require.NoError(t, err)
	pairings, err := Pair(seedList(groups...), plan)
	require.NoError(t, err)

	matches, err := NewSingleEliminationGenerator(nil).GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: tournamentID,
		Pairings:     pairings,
		Format:       models.FormatHeadToHead,
		Now:          generatedAt,
	})
	require.NoError(t, err)
	return matches
}

func byID(matches []*models.Match) map[string]*models.Match {
	out := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		out[m.ID] = m
	}
	return out
}

func TestGenerateBracketWithPlayIns(t *testing.T) {
	matches := generate(t, 5, "g1", "g2", "g3", "g4", "g5", "g6")

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"t5-PIM1", "t5-PIM2", "t5-R1M1", "t5-R1M2", "t5-R2M1", "t5-BRONZE"}, ids)

	all := byID(matches)

	pim1 := all["t5-PIM1"]
	assert.Equal(t, models.PhasePlayIn, pim1.Phase)
	assert.Equal(t, 0, pim1.Round)
	assert.Equal(t, []string{"s3", "s6"}, pim1.Participants())
	assert.NotNil(t, pim1.MaterializedAt, "play-in participants are known up front")

	sf1 := all["t5-R1M1"]
	assert.Equal(t, models.PhaseSemifinal, sf1.Phase)
	assert.Nil(t, sf1.MaterializedAt)
	assert.Equal(t, []string{"s1"}, sf1.Slots[0].ParticipantIDs)
	assert.Equal(t, models.SlotSourceWinner, sf1.Slots[1].Source)
	assert.Equal(t, "t5-PIM2", *sf1.Slots[1].SourceMatchID)
	assert.Equal(t, []string{"t5-PIM1"}, all["t5-R1M2"].SourceMatchIDs())

	final := all["t5-R2M1"]
	assert.Equal(t, models.PhaseFinal, final.Phase)
	assert.Equal(t, []string{"t5-R1M1", "t5-R1M2"}, final.SourceMatchIDs())

	bronze := all["t5-BRONZE"]
	assert.Equal(t, models.PhaseBronze, bronze.Phase)
	assert.Equal(t, final.Round, bronze.Round)
	assert.Equal(t, 2, bronze.OrderInRound)
	for _, s := range bronze.Slots {
		assert.Equal(t, models.SlotSourceLoser, s.Source)
	}
}

func TestGenerateBracketEightQualifiers(t *testing.T) {
	matches := generate(t, 1, "A", "B", "C", "D", "A", "B", "C", "D")
	require.Len(t, matches, 8)

	phases := map[models.Phase]int{}
	for _, m := range matches {
		phases[m.Phase]++
		assert.Equal(t, models.FormatHeadToHead, m.Format)
		assert.Equal(t, generatedAt, m.CreatedAt)
	}
	assert.Equal(t, map[models.Phase]int{
		models.PhaseQuarterfinal: 4,
		models.PhaseSemifinal:    2,
		models.PhaseFinal:        1,
		models.PhaseBronze:       1,
	}, phases)

	bronze := byID(matches)["t1-BRONZE"]
	assert.Equal(t, []string{"t1-R2M1", "t1-R2M2"}, bronze.SourceMatchIDs())
}

func TestGenerateBracketWithoutBronze(t *testing.T) {
	matches := generate(t, 2, "A", "B", "A", "B")
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.NotEqual(t, models.PhaseBronze, m.Phase)
	}
}

func TestGenerateBracketRejectsEmptyPairings(t *testing.T) {
	_, err := NewSingleEliminationGenerator(nil).GenerateBracket(context.Background(), GenerateBracketParams{TournamentID: 1})
	assert.Error(t, err)
}

func TestGeneratedBracketFormsFeederGraph(t *testing.T) {
	matches := generate(t, 9, "A", "B", "C", "D", "E", "F", "G", "H", "A", "B", "C", "D")

	g, err := NewFeederGraph(matches)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, len(matches), order)

	final, ok := g.Match("t9-R3M1")
	require.True(t, ok)
	assert.Equal(t, models.PhaseFinal, final.Phase)
	assert.Empty(t, g.Dependents(final.ID))
	assert.Len(t, g.Feeders(final.ID), 2)
}
