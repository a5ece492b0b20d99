package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-progression/brackets"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/results"
	"github.com/Dosada05/tournament-progression/scoring"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed     = results.ErrValidation
	ErrFormatMismatch       = errors.New("result format does not match the match format")
	ErrMatchNotReady        = errors.New("match participants are not determined yet")
	ErrRosterNotConfirmed   = errors.New("match roster is not confirmed")
	ErrRosterInvalid        = errors.New("roster must list match participants only")
	ErrFormatNotImplemented = results.ErrFormatNotImplemented
	ErrStandingsMissing     = errors.New("no group standings stored for tournament")

	// Ошибки конфликтов
	ErrResultConflict   = errors.New("match result already recorded")
	ErrKnockoutExists   = errors.New("knockout bracket already generated for tournament")
	ErrMatchNotRecorded = errors.New("match has no recorded result")

	// Ошибки продвижения по сетке
	ErrAdvancementAmbiguous  = brackets.ErrAdvancementAmbiguous
	ErrMaterializationFailed = errors.New("result recorded but next round could not be materialized")

	ErrConfiguration = scoring.ErrConfiguration

	ErrMatchNotFound = errors.New("match not found")
)

// AdvancementAmbiguousError is returned when a match would be recorded with
// no single advancing side. Nothing is written; an organizer has to submit a
// decisive result.
type AdvancementAmbiguousError struct {
	MatchID string
	Ranking []models.RankEntry
	Err     error
}

func (e *AdvancementAmbiguousError) Error() string {
	return fmt.Sprintf("match %s: %v", e.MatchID, e.Err)
}

func (e *AdvancementAmbiguousError) Unwrap() error {
	return e.Err
}
