package models

import "time"

// MatchRoster is the confirmed attendance for a match. A result is accepted
// only for a confirmed roster.
type MatchRoster struct {
	MatchID        string    `json:"match_id" db:"match_id"`
	ParticipantIDs []string  `json:"participant_ids" db:"participant_ids"`
	ConfirmedBy    *int      `json:"confirmed_by,omitempty" db:"confirmed_by"`
	ConfirmedAt    time.Time `json:"confirmed_at" db:"confirmed_at"`
}
