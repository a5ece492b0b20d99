package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
)

// MinQualifiers is the smallest field a knockout stage can be built for.
const MinQualifiers = 2

// bronzeMinQualifiers: a third-place match is played once at least six
// participants reached the knockout stage.
const bronzeMinQualifiers = 6

var ErrTooFewQualifiers = errors.New("knockout stage requires at least 2 qualifiers")

// CalculateStructure returns the bracket plan for n qualifiers.
//
// The main bracket has the largest power of two not exceeding n. When n is a
// power of two every qualifier enters the bracket directly. Otherwise the
// n-bracketSize surplus pairs are settled in a play-in round and the remaining
// seeds get byes, so that byes + 2*playIn == n.
func CalculateStructure(n int) (models.BracketPlan, error) {
	if n < MinQualifiers {
		return models.BracketPlan{}, fmt.Errorf("%w: got %d", ErrTooFewQualifiers, n)
	}

	size := floorPowerOfTwo(n)
	plan := models.BracketPlan{
		Qualifiers:  n,
		BracketSize: size,
		HasBronze:   n >= bronzeMinQualifiers,
	}
	if size == n {
		return plan, nil
	}

	plan.PlayInMatches = n - size
	plan.Byes = size - plan.PlayInMatches
	return plan, nil
}

// Entrants is the number of participants that enter round 1 of the main
// bracket without playing a play-in match.
func Entrants(plan models.BracketPlan) int {
	if plan.PlayInMatches == 0 {
		return plan.Qualifiers
	}
	return plan.Byes
}

// NumRounds is the number of main bracket rounds, final included.
func NumRounds(plan models.BracketPlan) int {
	rounds := 0
	for size := plan.BracketSize; size > 1; size >>= 1 {
		rounds++
	}
	return rounds
}

// PhaseForRound maps a main bracket round to its phase tag.
func PhaseForRound(plan models.BracketPlan, round int) models.Phase {
	remaining := NumRounds(plan) - round
	switch remaining {
	case 0:
		return models.PhaseFinal
	case 1:
		return models.PhaseSemifinal
	case 2:
		return models.PhaseQuarterfinal
	default:
		return models.BracketRoundPhase(round)
	}
}

func floorPowerOfTwo(n int) int {
	size := 1
	for size*2 <= n {
		size *= 2
	}
	return size
}
