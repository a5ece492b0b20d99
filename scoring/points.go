// Package scoring converts canonical rankings into points for the ranking
// ledger.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
)

var ErrConfiguration = errors.New("scoring configuration error")

// ConfigError names the part of a scoring configuration that is missing or
// invalid.
type ConfigError struct {
	TournamentID int
	Detail       string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: tournament %d: %s", ErrConfiguration, e.TournamentID, e.Detail)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// MatchContext is what the calculator needs to know about the match besides
// its ranking.
type MatchContext struct {
	Phase models.Phase
	Pod   *string
}

// Calculate returns the points earned by every ranked participant. Ranks
// without an entry in the base table earn nothing. The result is a delta to
// be appended to the ledger, never a running total.
func Calculate(ranking []models.RankEntry, cfg *models.TournamentScoringConfig, mc MatchContext) (map[string]float64, error) {
	if cfg == nil {
		return nil, &ConfigError{Detail: "scoring configuration is missing"}
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	factor, err := multiplier(cfg, mc)
	if err != nil {
		return nil, err
	}

	allFirst := len(ranking) > 1
	for _, e := range ranking {
		if e.Rank != 1 {
			allFirst = false
			break
		}
	}

	points := make(map[string]float64, len(ranking))
	for _, e := range ranking {
		base := cfg.BasePoints[e.Rank]
		if allFirst && cfg.DrawPoints != nil {
			base = *cfg.DrawPoints
		}
		points[e.ParticipantID] = base * factor
	}
	return points, nil
}

func multiplier(cfg *models.TournamentScoringConfig, mc MatchContext) (float64, error) {
	switch cfg.Mode {
	case models.RankingModeFlat, "":
		return 1, nil
	case models.RankingModeTiered:
		m, ok := cfg.TierMultipliers[mc.Phase]
		if !ok {
			return 0, &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("no tier multiplier for phase %q", mc.Phase)}
		}
		return m, nil
	case models.RankingModePerformancePod:
		if mc.Pod == nil {
			return 0, &ConfigError{TournamentID: cfg.TournamentID, Detail: "match has no pod"}
		}
		m, ok := cfg.PodModifiers[*mc.Pod]
		if !ok {
			return 0, &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("no pod modifier for pod %q", *mc.Pod)}
		}
		return m, nil
	default:
		return 0, &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("unknown ranking mode %q", cfg.Mode)}
	}
}

// ValidateConfig checks that base points never increase with rank and that
// every multiplier is positive.
func ValidateConfig(cfg *models.TournamentScoringConfig) error {
	ranks := make([]int, 0, len(cfg.BasePoints))
	for r := range cfg.BasePoints {
		if r < 1 {
			return &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("base points for invalid rank %d", r)}
		}
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	prev := math.Inf(1)
	for _, r := range ranks {
		p := cfg.BasePoints[r]
		if p < 0 {
			return &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("negative base points for rank %d", r)}
		}
		if p > prev {
			return &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("base points increase at rank %d", r)}
		}
		prev = p
	}

	for phase, m := range cfg.TierMultipliers {
		if m <= 0 {
			return &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("tier multiplier for %q must be positive", phase)}
		}
	}
	for pod, m := range cfg.PodModifiers {
		if m <= 0 {
			return &ConfigError{TournamentID: cfg.TournamentID, Detail: fmt.Sprintf("pod modifier for %q must be positive", pod)}
		}
	}
	if cfg.DrawPoints != nil && *cfg.DrawPoints < 0 {
		return &ConfigError{TournamentID: cfg.TournamentID, Detail: "draw points must not be negative"}
	}
	return nil
}
