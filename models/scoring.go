package models

import "time"

type RankingMode string

const (
	RankingModeFlat           RankingMode = "FLAT"
	RankingModeTiered         RankingMode = "TIERED"
	RankingModePerformancePod RankingMode = "PERFORMANCE_POD"
)

// TournamentScoringConfig is owned by the tournament settings store and
// consumed read-only.
type TournamentScoringConfig struct {
	TournamentID    int                `json:"tournament_id" db:"tournament_id"`
	BasePoints      map[int]float64    `json:"base_points" db:"base_points"`
	Mode            RankingMode        `json:"mode" db:"mode"`
	TierMultipliers map[Phase]float64  `json:"tier_multipliers,omitempty" db:"tier_multipliers"`
	PodModifiers    map[string]float64 `json:"pod_modifiers,omitempty" db:"pod_modifiers"`
	// DrawPoints replaces the base points when every participant of a match
	// shares rank 1. Nil keeps the rank-1 base points.
	DrawPoints *float64 `json:"draw_points,omitempty" db:"draw_points"`
}

func DefaultScoringConfig(tournamentID int) *TournamentScoringConfig {
	return &TournamentScoringConfig{
		TournamentID: tournamentID,
		BasePoints:   map[int]float64{1: 3, 2: 2, 3: 1},
		Mode:         RankingModeFlat,
	}
}

// LedgerEntry is one append-only line of the cumulative ranking ledger.
type LedgerEntry struct {
	ID            string    `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	ParticipantID string    `json:"participant_id" db:"participant_id"`
	MatchID       string    `json:"match_id" db:"match_id"`
	Rank          int       `json:"rank" db:"rank"`
	Points        float64   `json:"points" db:"points"`
	RecordedAt    time.Time `json:"recorded_at" db:"recorded_at"`
}

// LedgerTotal is the cumulative score of a participant, summed from the
// ledger.
type LedgerTotal struct {
	ParticipantID string  `json:"participant_id" db:"participant_id" yaml:"participant"`
	Points        float64 `json:"points" db:"points" yaml:"points"`
	Matches       int     `json:"matches" db:"matches" yaml:"matches"`
}
