package brackets

import (
	"math/rand"
	"testing"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standing(group, id string, points, gd, scored int) *models.GroupStanding {
	return &models.GroupStanding{
		GroupID:        group,
		ParticipantID:  id,
		Points:         points,
		GoalDifference: gd,
		ScoreFor:       scored,
	}
}

func twoGroups() []*models.GroupStanding {
	b2 := standing("B", "b2", 4, -1, 3)
	b3 := standing("B", "b3", 4, 2, 5)
	b2.HeadToHead = map[string]models.Outcome{"b3": models.OutcomeWin}
	b3.HeadToHead = map[string]models.Outcome{"b2": models.OutcomeLoss}

	return []*models.GroupStanding{
		standing("A", "a4", 0, -8, 1),
		standing("A", "a3", 6, 1, 6),
		standing("A", "a1", 9, 6, 9),
		standing("A", "a2", 6, 3, 5),
		standing("B", "b4", 1, -5, 2),
		b3,
		standing("B", "b1", 7, 4, 8),
		b2,
	}
}

func TestCalculateSeedsTiers(t *testing.T) {
	got, err := CalculateSeeds(twoGroups(), 6, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "b1", "a2", "b2", "a3", "b3"}, got.ParticipantIDs())
	for i, want := range []int{1, 1, 2, 2, 3, 3} {
		assert.Equal(t, want, got.Seeds[i].GroupPosition, "seed %d", i+1)
	}
}

func TestCalculateSeedsTruncates(t *testing.T) {
	got, err := CalculateSeeds(twoGroups(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1", "a2", "b2", "a3"}, got.ParticipantIDs())
}

func TestRankGroupHeadToHeadBeatsGoalDifference(t *testing.T) {
	var groupB []*models.GroupStanding
	for _, s := range twoGroups() {
		if s.GroupID == "B" {
			groupB = append(groupB, s)
		}
	}

	ranked, err := RankGroup(groupB, 1)
	require.NoError(t, err)

	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ParticipantID
	}
	assert.Equal(t, []string{"b1", "b2", "b3", "b4"}, ids)
}

func TestRankGroupRejectsSeveralGroups(t *testing.T) {
	_, err := RankGroup(twoGroups(), 1)
	assert.ErrorIs(t, err, ErrInvalidStandings)
}

func TestCalculateSeedsIsPureAndOrderIndependent(t *testing.T) {
	standings := make([]*models.GroupStanding, 0, 16)
	for _, g := range []string{"A", "B", "C", "D"} {
		for i, id := range []string{"1", "2", "3", "4"} {
			// Identical lines across groups leave only the draw to split tiers.
			standings = append(standings, standing(g, g+id, 9-3*i, 4-2*i, 6-i))
		}
	}

	first, err := CalculateSeeds(standings, 12, 42)
	require.NoError(t, err)
	require.Len(t, first.Seeds, 12)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]*models.GroupStanding(nil), standings...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		again, err := CalculateSeeds(shuffled, 12, 42)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	seen := map[string]bool{}
	for i, s := range first.Seeds {
		assert.False(t, seen[s.ParticipantID], "duplicate seed %s", s.ParticipantID)
		seen[s.ParticipantID] = true
		assert.Equal(t, i/4+1, s.GroupPosition)
	}
}

func TestCalculateSeedsErrors(t *testing.T) {
	t.Run("too few qualifiers", func(t *testing.T) {
		_, err := CalculateSeeds(twoGroups(), 1, 0)
		assert.ErrorIs(t, err, ErrTooFewQualifiers)
	})
	t.Run("not enough participants", func(t *testing.T) {
		_, err := CalculateSeeds(twoGroups(), 9, 0)
		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
	})
	t.Run("duplicate participant", func(t *testing.T) {
		s := append(twoGroups(), standing("C", "a1", 3, 0, 0))
		_, err := CalculateSeeds(s, 4, 0)
		assert.ErrorIs(t, err, ErrDuplicateParticipant)
	})
	t.Run("missing group", func(t *testing.T) {
		s := append(twoGroups(), standing("", "x", 3, 0, 0))
		_, err := CalculateSeeds(s, 4, 0)
		assert.ErrorIs(t, err, ErrMissingGroupIdentifier)
	})
	t.Run("nil standing", func(t *testing.T) {
		s := append(twoGroups(), nil)
		_, err := CalculateSeeds(s, 4, 0)
		assert.ErrorIs(t, err, ErrInvalidStandings)
	})
}
