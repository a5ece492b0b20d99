// tournament-progression/brackets/single_elimination.go
package brackets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
)

type SingleEliminationGenerator struct {
	logger *slog.Logger
}

func NewSingleEliminationGenerator(logger *slog.Logger) BracketGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SingleEliminationGenerator{logger: logger}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func MatchID(tournamentID int, uid string) string {
	return fmt.Sprintf("t%d-%s", tournamentID, uid)
}

// GenerateBracket materializes the whole knockout tree: play-in matches,
// every main bracket round and the bronze match. Later-round slots reference
// their feeder matches and stay empty until those are recorded.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	p := params.Pairings
	plan := p.Plan
	if len(p.FirstRound) == 0 {
		return nil, errors.New("cannot generate bracket without first round matchups")
	}
	if len(p.FirstRound)*2 != plan.BracketSize {
		return nil, fmt.Errorf("first round has %d matchups, bracket size %d", len(p.FirstRound), plan.BracketSize)
	}

	numRounds := NumRounds(plan)
	g.logger.Info("generating knockout bracket",
		slog.Int("tournament_id", params.TournamentID),
		slog.Int("qualifiers", plan.Qualifiers),
		slog.Int("bracket_size", plan.BracketSize),
		slog.Int("byes", plan.Byes),
		slog.Int("play_in_matches", plan.PlayInMatches),
		slog.Int("rounds", numRounds),
		slog.Bool("bronze", plan.HasBronze))

	matches := make([]*models.Match, 0, plan.PlayInMatches+plan.BracketSize)
	newMatch := func(uid string, phase models.Phase, round, order int, slots []models.MatchSlot) *models.Match {
		m := &models.Match{
			ID:           MatchID(params.TournamentID, uid),
			TournamentID: params.TournamentID,
			Phase:        phase,
			Round:        round,
			OrderInRound: order,
			Format:       params.Format,
			Slots:        slots,
			CreatedAt:    params.Now,
		}
		if m.IsResolved() {
			now := params.Now
			m.MaterializedAt = &now
		}
		matches = append(matches, m)
		return m
	}

	playInIDs := make([]string, len(p.PlayIns))
	for k, pair := range p.PlayIns {
		m := newMatch(fmt.Sprintf("PIM%d", k+1), models.PhasePlayIn, 0, k+1, []models.MatchSlot{
			seedSlot(pair.Home, pair.HomeSeed),
			seedSlot(pair.Away, pair.AwaySeed),
		})
		playInIDs[k] = m.ID
	}

	previous := make([]string, 0, len(p.FirstRound))
	for i, matchup := range p.FirstRound {
		slots := make([]models.MatchSlot, 0, 2)
		for _, pos := range matchup {
			switch {
			case pos.Seed != nil:
				slots = append(slots, seedSlot(*pos.Seed, pos.SeedNumber))
			case pos.PlayInIndex != nil && *pos.PlayInIndex < len(playInIDs):
				slots = append(slots, feederSlot(playInIDs[*pos.PlayInIndex], models.SlotSourceWinner, pos.SeedNumber))
			default:
				return nil, fmt.Errorf("unexpected bracket position %d in first round matchup %d", pos.SeedNumber, i+1)
			}
		}
		m := newMatch(fmt.Sprintf("R1M%d", i+1), PhaseForRound(plan, 1), 1, i+1, slots)
		previous = append(previous, m.ID)
	}

	var semifinals []string
	if numRounds == 2 {
		semifinals = previous
	}
	for r := 2; r <= numRounds; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := make([]string, 0, len(previous)/2)
		for i := 0; i+1 < len(previous); i += 2 {
			m := newMatch(fmt.Sprintf("R%dM%d", r, i/2+1), PhaseForRound(plan, r), r, i/2+1, []models.MatchSlot{
				feederSlot(previous[i], models.SlotSourceWinner, 0),
				feederSlot(previous[i+1], models.SlotSourceWinner, 0),
			})
			current = append(current, m.ID)
		}
		if r == numRounds-1 {
			semifinals = current
		}
		previous = current
	}

	if plan.HasBronze && len(semifinals) == 2 {
		newMatch("BRONZE", models.PhaseBronze, numRounds, 2, []models.MatchSlot{
			feederSlot(semifinals[0], models.SlotSourceLoser, 0),
			feederSlot(semifinals[1], models.SlotSourceLoser, 0),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})

	return matches, nil
}

func seedSlot(s models.Seed, number int) models.MatchSlot {
	return models.MatchSlot{
		ParticipantIDs: []string{s.ParticipantID},
		Seed:           number,
		Source:         models.SlotSourceSeed,
	}
}

func feederSlot(matchID string, source models.SlotSource, seedNumber int) models.MatchSlot {
	id := matchID
	return models.MatchSlot{Source: source, SourceMatchID: &id, Seed: seedNumber}
}
