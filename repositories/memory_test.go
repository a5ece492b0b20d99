package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// semifinalsAndFinal is a 4-bracket: two recorded-ready semifinals and an
// empty final fed by their winners.
func semifinalsAndFinal() []*models.Match {
	return []*models.Match{
		{ID: "t1-R1M1", TournamentID: 1, Phase: models.PhaseSemifinal, Round: 1, OrderInRound: 1, Format: models.FormatHeadToHead,
			Slots: []models.MatchSlot{{ParticipantIDs: []string{"a"}, Seed: 1, Source: models.SlotSourceSeed}, {ParticipantIDs: []string{"d"}, Seed: 4, Source: models.SlotSourceSeed}}},
		{ID: "t1-R1M2", TournamentID: 1, Phase: models.PhaseSemifinal, Round: 1, OrderInRound: 2, Format: models.FormatHeadToHead,
			Slots: []models.MatchSlot{{ParticipantIDs: []string{"b"}, Seed: 2, Source: models.SlotSourceSeed}, {ParticipantIDs: []string{"c"}, Seed: 3, Source: models.SlotSourceSeed}}},
		{ID: "t1-R2M1", TournamentID: 1, Phase: models.PhaseFinal, Round: 2, OrderInRound: 1, Format: models.FormatHeadToHead,
			Slots: []models.MatchSlot{
				{Source: models.SlotSourceWinner, SourceMatchID: strPtr("t1-R1M1")},
				{Source: models.SlotSourceWinner, SourceMatchID: strPtr("t1-R1M2")},
			}},
	}
}

func resultRecord(matchID string, at time.Time, points map[string]float64) *models.ResultRecord {
	rec := &models.ResultRecord{
		MatchID:       matchID,
		TournamentID:  1,
		RawResult:     []byte(`{"format":"HEAD_TO_HEAD"}`),
		PointsAwarded: points,
		Digest:        "digest-" + matchID,
		RecordedAt:    at,
	}
	rank := 1
	for _, id := range []string{"a", "b", "c", "d"} {
		if p, ok := points[id]; ok {
			rec.Ranking = append(rec.Ranking, models.RankEntry{ParticipantID: id, Rank: rank})
			rec.LedgerEntries = append(rec.LedgerEntries, &models.LedgerEntry{
				ID: matchID + "-" + id, TournamentID: 1, ParticipantID: id, MatchID: matchID, Rank: rank, Points: p, RecordedAt: at,
			})
			rank++
		}
	}
	return rec
}

func TestMemoryMatchesCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()

	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))
	assert.ErrorIs(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()[:1]), ErrMatchConflict)

	list, err := repo.ListByTournament(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "t1-R2M1", list[2].ID)

	list[0].Slots[0].ParticipantIDs[0] = "mutated"
	again, err := repo.GetByID(ctx, nil, "t1-R1M1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Slots[0].ParticipantIDs)

	_, err = repo.GetByID(ctx, nil, "t1-R9M9")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMemoryRecordResultOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()
	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordResult(ctx, resultRecord("t1-R1M1", at, map[string]float64{"a": 3, "d": 2})))
	assert.ErrorIs(t, repo.RecordResult(ctx, resultRecord("t1-R1M1", at, map[string]float64{"a": 2, "d": 3})), ErrMatchAlreadyRecorded)
	assert.ErrorIs(t, repo.RecordResult(ctx, resultRecord("t1-R7M7", at, nil)), ErrMatchNotFound)

	m, err := repo.GetByID(ctx, nil, "t1-R1M1")
	require.NoError(t, err)
	assert.True(t, m.IsRecorded())
	assert.Equal(t, map[string]float64{"a": 3, "d": 2}, m.PointsAwarded)
	assert.Equal(t, "digest-t1-R1M1", *m.ResultDigest)

	entries, err := store.Ledger().ListByTournament(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMemoryRecordResultConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()
	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.RecordResult(ctx, resultRecord("t1-R1M2", time.Now(), map[string]float64{"b": 3, "c": 2}))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrMatchAlreadyRecorded)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	entries, err := store.Ledger().ListByTournament(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMemoryMaterializeRoundOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()
	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))

	round := models.RoundMaterialization{
		TournamentID: 1,
		Round:        2,
		Assignments:  []models.SlotAssignment{{MatchID: "t1-R2M1", Slots: [][]string{{"a"}, {"b"}}}},
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied []string
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := repo.MaterializeRound(ctx, round, time.Now())
			assert.NoError(t, err)
			mu.Lock()
			applied = append(applied, ids...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"t1-R2M1"}, applied)
	final, err := repo.GetByID(ctx, nil, "t1-R2M1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, final.Participants())
	assert.NotNil(t, final.MaterializedAt)
}

func TestMemoryMaterializeRoundRejectsPartialAssignment(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()
	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))

	_, err := repo.MaterializeRound(ctx, models.RoundMaterialization{
		TournamentID: 1,
		Round:        2,
		Assignments:  []models.SlotAssignment{{MatchID: "t1-R2M1", Slots: [][]string{{"a"}, nil}}},
	}, time.Now())
	assert.ErrorIs(t, err, ErrAssignmentMismatch)

	_, err = repo.MaterializeRound(ctx, models.RoundMaterialization{
		TournamentID: 1,
		Round:        1,
		Assignments:  []models.SlotAssignment{{MatchID: "t1-R2M1", Slots: [][]string{{"a"}, {"b"}}}},
	}, time.Now())
	assert.ErrorIs(t, err, ErrMatchNotFound)

	final, err := repo.GetByID(ctx, nil, "t1-R2M1")
	require.NoError(t, err)
	assert.Nil(t, final.MaterializedAt)
}

func TestMemoryLedgerTotals(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Matches()
	require.NoError(t, repo.CreateBatch(ctx, nil, semifinalsAndFinal()))

	at := time.Now()
	require.NoError(t, repo.RecordResult(ctx, resultRecord("t1-R1M1", at, map[string]float64{"a": 3, "d": 2})))
	require.NoError(t, repo.RecordResult(ctx, resultRecord("t1-R1M2", at.Add(time.Minute), map[string]float64{"b": 3, "c": 2})))
	_, err := repo.MaterializeRound(ctx, models.RoundMaterialization{
		TournamentID: 1, Round: 2,
		Assignments: []models.SlotAssignment{{MatchID: "t1-R2M1", Slots: [][]string{{"a"}, {"b"}}}},
	}, at)
	require.NoError(t, err)
	require.NoError(t, repo.RecordResult(ctx, resultRecord("t1-R2M1", at.Add(time.Hour), map[string]float64{"a": 3, "b": 2})))

	totals, err := store.Ledger().Totals(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []*models.LedgerTotal{
		{ParticipantID: "a", Points: 6, Matches: 2},
		{ParticipantID: "b", Points: 5, Matches: 2},
		{ParticipantID: "c", Points: 2, Matches: 1},
		{ParticipantID: "d", Points: 2, Matches: 1},
	}, totals)
}

func TestMemoryRostersAndConfigs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Matches().CreateBatch(ctx, nil, semifinalsAndFinal()))

	_, err := store.Rosters().GetByMatch(ctx, nil, "t1-R1M1")
	assert.ErrorIs(t, err, ErrRosterNotFound)
	assert.ErrorIs(t, store.Rosters().Upsert(ctx, nil, &models.MatchRoster{MatchID: "nope"}), ErrRosterMatchInvalid)

	require.NoError(t, store.Rosters().Upsert(ctx, nil, &models.MatchRoster{MatchID: "t1-R1M1", ParticipantIDs: []string{"a", "d"}}))
	roster, err := store.Rosters().GetByMatch(ctx, nil, "t1-R1M1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, roster.ParticipantIDs)
	assert.False(t, roster.ConfirmedAt.IsZero())

	_, err = store.ScoringConfigs().GetByTournament(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrScoringConfigNotFound)
	require.NoError(t, store.ScoringConfigs().Upsert(ctx, nil, models.DefaultScoringConfig(1)))
	cfg, err := store.ScoringConfigs().GetByTournament(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RankingModeFlat, cfg.Mode)
}

func TestMemoryStandingsReplace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Standings()

	first := []*models.GroupStanding{{GroupID: "A", ParticipantID: "a1"}, {GroupID: "A", ParticipantID: "a2"}}
	require.NoError(t, repo.ReplaceForTournament(ctx, 3, first))
	require.NoError(t, repo.ReplaceForTournament(ctx, 3, []*models.GroupStanding{{GroupID: "B", ParticipantID: "b1", Points: 4}}))

	got, err := repo.ListByTournament(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].TournamentID)
	assert.Equal(t, "b1", got[0].ParticipantID)

	dup := []*models.GroupStanding{{GroupID: "A", ParticipantID: "x"}, {GroupID: "B", ParticipantID: "x"}}
	assert.ErrorIs(t, repo.ReplaceForTournament(ctx, 3, dup), ErrStandingParticipantInvalid)
}

func TestMemoryStandingsReplaceLeavesInputUntouched(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Standings()

	in := []*models.GroupStanding{{GroupID: "A", ParticipantID: "a1", HeadToHead: map[string]models.Outcome{"a2": models.OutcomeWin}}}
	require.NoError(t, repo.ReplaceForTournament(ctx, 4, in))

	assert.Zero(t, in[0].TournamentID)
	assert.Zero(t, in[0].ID)
	assert.True(t, in[0].UpdatedAt.IsZero())

	in[0].HeadToHead["a2"] = models.OutcomeLoss
	got, err := repo.ListByTournament(ctx, nil, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].TournamentID)
	assert.Equal(t, 1, got[0].ID)
	assert.False(t, got[0].UpdatedAt.IsZero())
	assert.Equal(t, models.OutcomeWin, got[0].HeadToHead["a2"])
}
