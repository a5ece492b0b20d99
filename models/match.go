package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusRecorded MatchStatus = "recorded"
)

// Phase is the stage tag of a match. Bracket rounds before the quarterfinal
// are tagged ROUND_<n>.
type Phase string

const (
	PhaseGroup        Phase = "GROUP"
	PhasePlayIn       Phase = "PLAY_IN"
	PhaseQuarterfinal Phase = "QUARTERFINAL"
	PhaseSemifinal    Phase = "SEMIFINAL"
	PhaseFinal        Phase = "FINAL"
	PhaseBronze       Phase = "BRONZE"
)

func BracketRoundPhase(round int) Phase {
	return Phase(fmt.Sprintf("ROUND_%d", round))
}

// SlotSource tells where the occupant of a slot comes from.
type SlotSource string

const (
	SlotSourceSeed   SlotSource = "seed"
	SlotSourceWinner SlotSource = "winner"
	SlotSourceLoser  SlotSource = "loser"
)

// MatchSlot is one side of a match. ParticipantIDs stays empty until the
// source match is recorded. Team formats may carry several participants.
type MatchSlot struct {
	ParticipantIDs []string   `json:"participant_ids,omitempty"`
	Seed           int        `json:"seed,omitempty"`
	Source         SlotSource `json:"source"`
	SourceMatchID  *string    `json:"source_match_id,omitempty"`
}

func (s MatchSlot) IsResolved() bool {
	return len(s.ParticipantIDs) > 0
}

type Match struct {
	ID           string       `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Phase        Phase        `json:"phase" db:"phase"`
	Round        int          `json:"round" db:"round"`
	OrderInRound int          `json:"order_in_round" db:"order_in_round"`
	Format       ResultFormat `json:"format" db:"format"`
	Pod          *string      `json:"pod,omitempty" db:"pod"`
	Slots        []MatchSlot  `json:"slots" db:"slots"`

	RawResult     json.RawMessage    `json:"raw_result,omitempty" db:"raw_result"`
	Ranking       []RankEntry        `json:"ranking,omitempty" db:"ranking"`
	PointsAwarded map[string]float64 `json:"points_awarded,omitempty" db:"points_awarded"`
	ResultDigest  *string            `json:"result_digest,omitempty" db:"result_digest"`

	RecordedAt     *time.Time `json:"recorded_at,omitempty" db:"recorded_at"`
	MaterializedAt *time.Time `json:"materialized_at,omitempty" db:"materialized_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func (m *Match) Status() MatchStatus {
	if m.RecordedAt != nil {
		return MatchStatusRecorded
	}
	return MatchStatusPending
}

func (m *Match) IsRecorded() bool {
	return m.RecordedAt != nil
}

// IsResolved reports whether every slot has its participants assigned.
func (m *Match) IsResolved() bool {
	if len(m.Slots) == 0 {
		return false
	}
	for _, s := range m.Slots {
		if !s.IsResolved() {
			return false
		}
	}
	return true
}

// Participants returns the participants of all slots in slot order.
func (m *Match) Participants() []string {
	out := make([]string, 0, len(m.Slots))
	for _, s := range m.Slots {
		out = append(out, s.ParticipantIDs...)
	}
	return out
}

// SourceMatchIDs returns the feeder match IDs referenced by the slots.
func (m *Match) SourceMatchIDs() []string {
	ids := make([]string, 0, len(m.Slots))
	for _, s := range m.Slots {
		if s.SourceMatchID != nil {
			ids = append(ids, *s.SourceMatchID)
		}
	}
	return ids
}

// SlotAssignment resolves the slots of one match during round materialization.
// Slots is aligned with Match.Slots; nil entries keep the current occupants.
type SlotAssignment struct {
	MatchID string     `json:"match_id"`
	Slots   [][]string `json:"slots"`
}

// RoundMaterialization is the unit written atomically when a round becomes
// playable.
type RoundMaterialization struct {
	TournamentID int              `json:"tournament_id"`
	Round        int              `json:"round"`
	Assignments  []SlotAssignment `json:"assignments"`
}

// ResultRecord is written exactly once per match.
type ResultRecord struct {
	MatchID       string
	TournamentID  int
	RawResult     json.RawMessage
	Ranking       []RankEntry
	PointsAwarded map[string]float64
	Digest        string
	LedgerEntries []*LedgerEntry
	RecordedAt    time.Time
}
