// Package results turns format-specific raw match results into canonical
// rankings.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/tournament-progression/models"
)

// Strategy interprets the raw payload of one result format. Process must be a
// pure function of the payload.
type Strategy interface {
	Format() models.ResultFormat
	Validate(payload json.RawMessage, expectedParticipants []string) error
	Process(payload json.RawMessage) ([]models.RankEntry, error)
}

// Registry dispatches payloads to the strategy registered for their format
// tag. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[models.ResultFormat]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[models.ResultFormat]Strategy, len(strategies))}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// NewDefaultRegistry registers every built-in strategy. SKILL_RATING has no
// built-in strategy.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		IndividualRanking{},
		HeadToHead{},
		TeamMatch{},
		TimeBased{},
	)
}

// Register adds or replaces the strategy for its format.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Format()] = s
}

func (r *Registry) Lookup(format models.ResultFormat) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormatNotImplemented, format)
	}
	return s, nil
}

// Interpret validates the payload against the expected participants and
// returns its canonical ranking.
func (r *Registry) Interpret(format models.ResultFormat, payload json.RawMessage, expectedParticipants []string) ([]models.RankEntry, error) {
	s, err := r.Lookup(format)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(payload, expectedParticipants); err != nil {
		return nil, err
	}
	return s.Process(payload)
}

func decodePayload(payload json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return NewValidationError("payload", "must not be empty")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewValidationError("payload", err.Error())
	}
	return nil
}

// checkParticipants verifies that got holds every expected participant
// exactly once and nobody else.
func checkParticipants(fe fieldErrors, field string, got []string, expected []string) {
	want := make(map[string]bool, len(expected))
	for _, id := range expected {
		want[id] = false
	}
	for _, id := range got {
		seen, ok := want[id]
		switch {
		case id == "":
			fe.add(field, "participant id must not be empty")
		case !ok:
			fe.add(field, "unexpected participant %q", id)
		case seen:
			fe.add(field, "participant %q listed more than once", id)
		default:
			want[id] = true
		}
	}
	missing := make([]string, 0)
	for id, seen := range want {
		if !seen {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		fe.add(field, "missing participants %v", missing)
	}
}

// sortRanking orders entries by rank, then participant ID.
func sortRanking(entries []models.RankEntry) []models.RankEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
	return entries
}

// competitionRanks assigns 1,1,3-style ranks to ids already sorted best
// first; equal(i) reports whether ids[i] ties with ids[i-1].
func competitionRanks(ids []string, equal func(i int) bool) []models.RankEntry {
	out := make([]models.RankEntry, len(ids))
	rank := 1
	for i, id := range ids {
		if i > 0 && !equal(i) {
			rank = i + 1
		}
		out[i] = models.RankEntry{ParticipantID: id, Rank: rank}
	}
	return sortRanking(out)
}
