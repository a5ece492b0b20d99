package models

import "encoding/json"

// ResultFormat tags the raw payload of a match result.
type ResultFormat string

const (
	FormatIndividualRanking ResultFormat = "INDIVIDUAL_RANKING"
	FormatHeadToHead        ResultFormat = "HEAD_TO_HEAD"
	FormatTeamMatch         ResultFormat = "TEAM_MATCH"
	FormatTimeBased         ResultFormat = "TIME_BASED"
	FormatSkillRating       ResultFormat = "SKILL_RATING"
)

// RankEntry is one line of a canonical ranking. Rank 1 is best; tied
// participants share a rank.
type RankEntry struct {
	ParticipantID string `json:"participant_id"`
	Rank          int    `json:"rank"`
}

// ResultPayload is the format-tagged raw result as submitted.
type ResultPayload struct {
	Format ResultFormat    `json:"format"`
	Data   json.RawMessage `json:"data"`
}
