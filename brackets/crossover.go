package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
)

var ErrSeedCountMismatch = errors.New("seed count does not match the bracket plan")

// maxPairingSearchSteps bounds the rematch-avoidance search.
const maxPairingSearchSteps = 200_000

// Pair builds play-in pairings and first-round bracket positions from a seed
// list.
//
// The top plan.Byes seeds skip the play-in round. Play-in k matches seed
// byes+k against seed n+1-k and its survivor takes seed slot byes+k. Bracket
// slots are laid out so that position i meets position bracketSize+1-i and
// seeds 1 and 2 can only meet in the final. Wherever both sides of a match are
// known up front, same-group meetings are swapped away if any other pairing
// allows it. A bye seed is likewise kept away from play-ins that involve one
// of its group mates.
func Pair(assignment models.SeedAssignment, plan models.BracketPlan) (models.Pairings, error) {
	seeds := assignment.Seeds
	n := len(seeds)
	if n != plan.Qualifiers {
		return models.Pairings{}, fmt.Errorf("%w: %d seeds for %d qualifiers", ErrSeedCountMismatch, n, plan.Qualifiers)
	}
	if n < MinQualifiers {
		return models.Pairings{}, fmt.Errorf("%w: got %d", ErrTooFewQualifiers, n)
	}

	out := models.Pairings{Plan: plan}

	direct := Entrants(plan)
	if plan.PlayInMatches > 0 {
		out.Byes = append(out.Byes, seeds[:plan.Byes]...)

		top := make([]seedRef, 0, plan.PlayInMatches)
		bottom := make([]seedRef, 0, plan.PlayInMatches)
		for k := 1; k <= plan.PlayInMatches; k++ {
			top = append(top, seedRef{number: plan.Byes + k, seed: seeds[plan.Byes+k-1]})
			bottom = append(bottom, seedRef{number: n + 1 - k, seed: seeds[n-k]})
		}
		bottom = avoidSameGroup(top, bottom)
		for k := range top {
			out.PlayIns = append(out.PlayIns, models.Pairing{
				Home:     top[k].seed,
				HomeSeed: top[k].number,
				Away:     bottom[k].seed,
				AwaySeed: bottom[k].number,
			})
		}
	}

	positions := make([]models.BracketPosition, plan.BracketSize)
	for i := range positions {
		number := i + 1
		positions[i].SeedNumber = number
		if number <= direct {
			s := seeds[i]
			positions[i].Seed = &s
		} else {
			idx := number - plan.Byes - 1
			positions[i].PlayInIndex = &idx
		}
	}

	matchups := arrangeSeeds(NumRounds(plan))
	out.FirstRound = make([][2]models.BracketPosition, len(matchups))
	for i, m := range matchups {
		out.FirstRound[i] = [2]models.BracketPosition{positions[m.seed1], positions[m.seed2]}
	}

	crossoverFirstRound(out.FirstRound)
	crossoverByes(out.FirstRound, out.PlayIns)
	return out, nil
}

// crossoverFirstRound repairs same-group meetings among first-round matches
// whose both sides are seeds, keeping the stronger side of each match fixed.
func crossoverFirstRound(firstRound [][2]models.BracketPosition) {
	idx := make([]int, 0, len(firstRound))
	top := make([]seedRef, 0, len(firstRound))
	bottom := make([]seedRef, 0, len(firstRound))
	for i, m := range firstRound {
		if m[0].Seed == nil || m[1].Seed == nil {
			continue
		}
		idx = append(idx, i)
		top = append(top, seedRef{number: m[0].SeedNumber, seed: *m[0].Seed})
		bottom = append(bottom, seedRef{number: m[1].SeedNumber, seed: *m[1].Seed})
	}

	assigned := avoidSameGroup(top, bottom)
	for k, i := range idx {
		s := assigned[k].seed
		firstRound[i][1] = models.BracketPosition{SeedNumber: assigned[k].number, Seed: &s}
	}
}

// crossoverByes reassigns play-in survivors among the bye seeds waiting for
// them. A bye seed conflicts with a play-in when either side of it comes from
// the bye seed's group.
func crossoverByes(firstRound [][2]models.BracketPosition, playIns []models.Pairing) {
	idx := make([]int, 0, len(firstRound))
	for i, m := range firstRound {
		if m[0].Seed != nil && m[1].PlayInIndex != nil && *m[1].PlayInIndex < len(playIns) {
			idx = append(idx, i)
		}
	}

	conflict := func(i, j int) bool {
		bye := *firstRound[idx[i]][0].Seed
		pi := playIns[*firstRound[idx[j]][1].PlayInIndex]
		return sameGroup(bye, pi.Home) || sameGroup(bye, pi.Away)
	}
	choice := avoidConflicts(len(idx), conflict)

	opponents := make([]models.BracketPosition, len(idx))
	for k, j := range choice {
		opponents[k] = firstRound[idx[j]][1]
	}
	for k, i := range idx {
		firstRound[i][1] = opponents[k]
	}
}

type seedRef struct {
	number int
	seed   models.Seed
}

func sameGroup(a, b models.Seed) bool {
	return a.GroupID != "" && a.GroupID == b.GroupID
}

// avoidSameGroup returns bottom reordered so that bottom[i] faces top[i]
// without a same-group meeting.
func avoidSameGroup(top, bottom []seedRef) []seedRef {
	choice := avoidConflicts(len(top), func(i, j int) bool {
		return sameGroup(top[i].seed, bottom[j].seed)
	})
	out := make([]seedRef, len(bottom))
	for i, j := range choice {
		out[i] = bottom[j]
	}
	return out
}

// avoidConflicts picks an opponent index for each of n positions so that no
// pair conflicts. Each position prefers its table opponent, then the closest
// alternatives. When the table order has no conflict, or no conflict-free
// assignment exists, the identity order is returned.
func avoidConflicts(n int, conflict func(i, j int) bool) []int {
	identity := make([]int, n)
	clean := true
	for i := range identity {
		identity[i] = i
		if conflict(i, i) {
			clean = false
		}
	}
	if clean {
		return identity
	}

	used := make([]bool, n)
	choice := make([]int, n)
	steps := 0

	var assign func(i int) bool
	assign = func(i int) bool {
		if i == n {
			return true
		}
		for _, j := range preferenceOrder(i, n) {
			steps++
			if steps > maxPairingSearchSteps {
				return false
			}
			if used[j] || conflict(i, j) {
				continue
			}
			used[j] = true
			choice[i] = j
			if assign(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}

	if !assign(0) {
		return identity
	}
	return choice
}

// preferenceOrder lists candidate indexes for position i: i itself, then
// alternately the nearest lower and higher neighbours.
func preferenceOrder(i, n int) []int {
	order := make([]int, 0, n)
	order = append(order, i)
	for d := 1; len(order) < n; d++ {
		if i+d < n {
			order = append(order, i+d)
		}
		if i-d >= 0 {
			order = append(order, i-d)
		}
	}
	return order
}

type seedMatchup struct {
	seed1 int
	seed2 int
}

// arrangeSeeds lays out the first round of a bracket with numRounds rounds so
// that the top 2 seeds can only meet in the final, the top 4 in the semifinal,
// and so on. Seeds are 0-based.
func arrangeSeeds(numRounds int) []seedMatchup {
	matchups := []seedMatchup{{0, 1}}
	totalSeeds := 2

	for i := 1; i < numRounds; i++ {
		next := make([]seedMatchup, 0, totalSeeds)
		totalSeeds *= 2
		for _, parent := range matchups {
			next = append(next,
				seedMatchup{parent.seed1, totalSeeds - 1 - parent.seed1},
				seedMatchup{parent.seed2, totalSeeds - 1 - parent.seed2},
			)
		}
		matchups = next
	}
	return matchups
}
