package brackets

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
)

var ErrAdvancementAmbiguous = errors.New("no single advancing participant can be determined")

// Advancers splits a recorded match into the participants moving on as
// winners and those dropping out.
type Advancers struct {
	Winners []string
	Losers  []string
}

// DetermineAdvancers picks the winning side from a canonical ranking. Team
// matches advance the whole rank-1 team; every other format needs exactly one
// participant on rank 1. The engine never guesses: a shared first place is
// ErrAdvancementAmbiguous.
func DetermineAdvancers(format models.ResultFormat, participants []string, ranking []models.RankEntry) (Advancers, error) {
	if len(ranking) == 0 {
		return Advancers{}, fmt.Errorf("%w: empty ranking", ErrAdvancementAmbiguous)
	}

	var adv Advancers
	for _, e := range ranking {
		if e.Rank == 1 {
			adv.Winners = append(adv.Winners, e.ParticipantID)
		}
	}
	for _, p := range participants {
		if !slices.Contains(adv.Winners, p) {
			adv.Losers = append(adv.Losers, p)
		}
	}

	switch {
	case len(adv.Winners) == 0:
		return Advancers{}, fmt.Errorf("%w: nobody ranked first", ErrAdvancementAmbiguous)
	case format == models.FormatTeamMatch:
		if len(adv.Losers) == 0 {
			return Advancers{}, fmt.Errorf("%w: both teams share first place", ErrAdvancementAmbiguous)
		}
	case len(adv.Winners) > 1:
		return Advancers{}, fmt.Errorf("%w: %d participants share first place", ErrAdvancementAmbiguous, len(adv.Winners))
	}
	return adv, nil
}

// MatchAdvancers is DetermineAdvancers for a recorded match.
func MatchAdvancers(m *models.Match) (Advancers, error) {
	if !m.IsRecorded() {
		return Advancers{}, fmt.Errorf("match %s has no recorded result", m.ID)
	}
	adv, err := DetermineAdvancers(m.Format, m.Participants(), m.Ranking)
	if err != nil {
		return Advancers{}, fmt.Errorf("match %s: %w", m.ID, err)
	}
	return adv, nil
}

// AdvancementPlan is the pure outcome of evaluating a recorded match's
// dependents. Ready rounds still have to be written by the caller.
type AdvancementPlan struct {
	MatchID             string
	Ready               []models.RoundMaterialization
	Waiting             []string
	AlreadyMaterialized []string
}

func (p AdvancementPlan) HasDependents() bool {
	return len(p.Ready)+len(p.Waiting)+len(p.AlreadyMaterialized) > 0
}

// PlanAdvancement decides what the completion of matchID unlocks. A dependent
// is ready when all its feeders are recorded; it then gets the winners (or,
// for loser slots, the losers) of each feeder. Ready dependents are grouped by
// round because a round is materialized in one atomic step.
//
// If any feeder of a ready dependent has no single advancer the whole plan
// fails with ErrAdvancementAmbiguous and nothing is materialized.
func PlanAdvancement(g *FeederGraph, matchID string) (AdvancementPlan, error) {
	plan := AdvancementPlan{MatchID: matchID}
	if _, ok := g.Match(matchID); !ok {
		return plan, fmt.Errorf("match %s is not part of the feeder graph", matchID)
	}

	byRound := make(map[int][]models.SlotAssignment)
	tournamentID := 0

dependents:
	for _, dep := range g.Dependents(matchID) {
		if dep.MaterializedAt != nil {
			plan.AlreadyMaterialized = append(plan.AlreadyMaterialized, dep.ID)
			continue
		}

		assignment := models.SlotAssignment{MatchID: dep.ID, Slots: make([][]string, len(dep.Slots))}
		for i, slot := range dep.Slots {
			if slot.SourceMatchID == nil {
				continue
			}
			feeder, ok := g.Match(*slot.SourceMatchID)
			if !ok {
				return AdvancementPlan{}, fmt.Errorf("%w: %s", ErrUnknownFeeder, *slot.SourceMatchID)
			}
			if !feeder.IsRecorded() {
				plan.Waiting = append(plan.Waiting, dep.ID)
				continue dependents
			}
			adv, err := MatchAdvancers(feeder)
			if err != nil {
				return AdvancementPlan{}, err
			}
			if slot.Source == models.SlotSourceLoser {
				if len(adv.Losers) == 0 {
					return AdvancementPlan{}, fmt.Errorf("%w: match %s has no losing side for %s", ErrAdvancementAmbiguous, feeder.ID, dep.ID)
				}
				assignment.Slots[i] = adv.Losers
			} else {
				assignment.Slots[i] = adv.Winners
			}
		}
		tournamentID = dep.TournamentID
		byRound[dep.Round] = append(byRound[dep.Round], assignment)
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	for _, r := range rounds {
		plan.Ready = append(plan.Ready, models.RoundMaterialization{
			TournamentID: tournamentID,
			Round:        r,
			Assignments:  byRound[r],
		})
	}
	return plan, nil
}
