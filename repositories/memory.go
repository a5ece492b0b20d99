package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-progression/models"
)

// MemoryStore keeps every repository in process memory. Callers always get
// copies, so stored matches never change behind their back.
type MemoryStore struct {
	mu        sync.RWMutex
	matches   map[string]*models.Match
	ledger    []*models.LedgerEntry
	ledgerKey map[string]struct{}
	standings map[int][]*models.GroupStanding
	configs   map[int]*models.TournamentScoringConfig
	rosters   map[string]*models.MatchRoster

	roundLocks keyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:   make(map[string]*models.Match),
		ledgerKey: make(map[string]struct{}),
		standings: make(map[int][]*models.GroupStanding),
		configs:   make(map[int]*models.TournamentScoringConfig),
		rosters:   make(map[string]*models.MatchRoster),
	}
}

func (s *MemoryStore) Matches() MatchRepository { return memoryMatches{s} }
func (s *MemoryStore) Ledger() LedgerRepository { return memoryLedger{s} }
func (s *MemoryStore) Standings() GroupStandingRepository { return memoryStandings{s} }
func (s *MemoryStore) ScoringConfigs() ScoringConfigRepository { return memoryScoringConfigs{s} }
func (s *MemoryStore) Rosters() RosterRepository { return memoryRosters{s} }

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	c.Slots = make([]models.MatchSlot, len(m.Slots))
	for i, s := range m.Slots {
		c.Slots[i] = s
		c.Slots[i].ParticipantIDs = append([]string(nil), s.ParticipantIDs...)
		if s.SourceMatchID != nil {
			id := *s.SourceMatchID
			c.Slots[i].SourceMatchID = &id
		}
	}
	if m.RawResult != nil {
		c.RawResult = append(json.RawMessage(nil), m.RawResult...)
	}
	if m.Ranking != nil {
		c.Ranking = append([]models.RankEntry(nil), m.Ranking...)
	}
	if m.PointsAwarded != nil {
		c.PointsAwarded = make(map[string]float64, len(m.PointsAwarded))
		for k, v := range m.PointsAwarded {
			c.PointsAwarded[k] = v
		}
	}
	c.Pod = clonePtr(m.Pod)
	c.ResultDigest = clonePtr(m.ResultDigest)
	c.RecordedAt = clonePtr(m.RecordedAt)
	c.MaterializedAt = clonePtr(m.MaterializedAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type memoryMatches struct{ s *MemoryStore }

func (r memoryMatches) CreateBatch(_ context.Context, _ SQLExecutor, matches []*models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range matches {
		if _, exists := r.s.matches[m.ID]; exists {
			return fmt.Errorf("%w: %s", ErrMatchConflict, m.ID)
		}
	}
	for _, m := range matches {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		r.s.matches[m.ID] = cloneMatch(m)
	}
	return nil
}

func (r memoryMatches) GetByID(_ context.Context, _ SQLExecutor, id string) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r memoryMatches) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].OrderInRound != out[j].OrderInRound {
			return out[i].OrderInRound < out[j].OrderInRound
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func ledgerKey(e *models.LedgerEntry) string {
	return fmt.Sprintf("%d/%s/%s", e.TournamentID, e.ParticipantID, e.MatchID)
}

func (r memoryMatches) RecordResult(_ context.Context, rec *models.ResultRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.matches[rec.MatchID]
	if !ok {
		return ErrMatchNotFound
	}
	if m.RecordedAt != nil {
		return ErrMatchAlreadyRecorded
	}
	for _, e := range rec.LedgerEntries {
		if _, dup := r.s.ledgerKey[ledgerKey(e)]; dup {
			return fmt.Errorf("%w: ledger already holds entries for %s", ErrMatchAlreadyRecorded, rec.MatchID)
		}
	}

	updated := cloneMatch(m)
	updated.RawResult = append(json.RawMessage(nil), rec.RawResult...)
	updated.Ranking = append([]models.RankEntry(nil), rec.Ranking...)
	updated.PointsAwarded = make(map[string]float64, len(rec.PointsAwarded))
	for k, v := range rec.PointsAwarded {
		updated.PointsAwarded[k] = v
	}
	digest := rec.Digest
	updated.ResultDigest = &digest
	recordedAt := rec.RecordedAt
	updated.RecordedAt = &recordedAt
	r.s.matches[m.ID] = updated

	for _, e := range rec.LedgerEntries {
		entry := *e
		r.s.ledger = append(r.s.ledger, &entry)
		r.s.ledgerKey[ledgerKey(e)] = struct{}{}
	}
	return nil
}

func (r memoryMatches) MaterializeRound(_ context.Context, round models.RoundMaterialization, at time.Time) ([]string, error) {
	unlock := r.s.roundLocks.lock(fmt.Sprintf("%d/%d", round.TournamentID, round.Round))
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Validate everything first so a bad assignment leaves the round untouched.
	pending := make([]*models.Match, 0, len(round.Assignments))
	for _, a := range round.Assignments {
		m, ok := r.s.matches[a.MatchID]
		if !ok || m.TournamentID != round.TournamentID || m.Round != round.Round {
			return nil, fmt.Errorf("loading %s: %w", a.MatchID, ErrMatchNotFound)
		}
		if m.MaterializedAt != nil {
			continue
		}
		updated := cloneMatch(m)
		if err := applyAssignment(updated, a); err != nil {
			return nil, err
		}
		ts := at
		updated.MaterializedAt = &ts
		pending = append(pending, updated)
	}

	applied := make([]string, 0, len(pending))
	for _, m := range pending {
		r.s.matches[m.ID] = m
		applied = append(applied, m.ID)
	}
	return applied, nil
}

type memoryLedger struct{ s *MemoryStore }

func (r memoryLedger) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]*models.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.LedgerEntry, 0)
	for _, e := range r.s.ledger {
		if e.TournamentID == tournamentID {
			entry := *e
			out = append(out, &entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

func (r memoryLedger) Totals(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LedgerTotal, error) {
	entries, err := r.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}

	byParticipant := make(map[string]*models.LedgerTotal)
	for _, e := range entries {
		t, ok := byParticipant[e.ParticipantID]
		if !ok {
			t = &models.LedgerTotal{ParticipantID: e.ParticipantID}
			byParticipant[e.ParticipantID] = t
		}
		t.Points += e.Points
		t.Matches++
	}

	out := make([]*models.LedgerTotal, 0, len(byParticipant))
	for _, t := range byParticipant {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

type memoryStandings struct{ s *MemoryStore }

func (r memoryStandings) ReplaceForTournament(_ context.Context, tournamentID int, standings []*models.GroupStanding) error {
	seen := make(map[string]struct{}, len(standings))
	copied := make([]*models.GroupStanding, 0, len(standings))
	for i, st := range standings {
		if _, dup := seen[st.ParticipantID]; dup {
			return fmt.Errorf("%w: %s", ErrStandingParticipantInvalid, st.ParticipantID)
		}
		seen[st.ParticipantID] = struct{}{}

		c := *st
		c.TournamentID = tournamentID
		c.ID = i + 1
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = time.Now()
		}
		if st.HeadToHead != nil {
			c.HeadToHead = make(map[string]models.Outcome, len(st.HeadToHead))
			for k, v := range st.HeadToHead {
				c.HeadToHead[k] = v
			}
		}
		copied = append(copied, &c)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.standings[tournamentID] = copied
	return nil
}

func (r memoryStandings) ListByTournament(_ context.Context, _ SQLExecutor, tournamentID int) ([]*models.GroupStanding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.GroupStanding, 0, len(r.s.standings[tournamentID]))
	for _, st := range r.s.standings[tournamentID] {
		c := *st
		out = append(out, &c)
	}
	return out, nil
}

type memoryScoringConfigs struct{ s *MemoryStore }

func (r memoryScoringConfigs) GetByTournament(_ context.Context, _ SQLExecutor, tournamentID int) (*models.TournamentScoringConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cfg, ok := r.s.configs[tournamentID]
	if !ok {
		return nil, ErrScoringConfigNotFound
	}
	c := *cfg
	return &c, nil
}

func (r memoryScoringConfigs) Upsert(_ context.Context, _ SQLExecutor, cfg *models.TournamentScoringConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *cfg
	r.s.configs[cfg.TournamentID] = &c
	return nil
}

type memoryRosters struct{ s *MemoryStore }

func (r memoryRosters) GetByMatch(_ context.Context, _ SQLExecutor, matchID string) (*models.MatchRoster, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	roster, ok := r.s.rosters[matchID]
	if !ok {
		return nil, ErrRosterNotFound
	}
	c := *roster
	c.ParticipantIDs = append([]string(nil), roster.ParticipantIDs...)
	return &c, nil
}

func (r memoryRosters) Upsert(_ context.Context, _ SQLExecutor, roster *models.MatchRoster) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.matches[roster.MatchID]; !ok {
		return fmt.Errorf("%w: %s", ErrRosterMatchInvalid, roster.MatchID)
	}
	if roster.ConfirmedAt.IsZero() {
		roster.ConfirmedAt = time.Now()
	}
	c := *roster
	c.ParticipantIDs = append([]string(nil), roster.ParticipantIDs...)
	r.s.rosters[roster.MatchID] = &c
	return nil
}
