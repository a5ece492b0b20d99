package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-progression/brackets"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/repositories"
)

// PairingsPreview is everything needed to draw a knockout bracket before it
// is stored.
type PairingsPreview struct {
	Plan     models.BracketPlan    `json:"plan" yaml:"plan"`
	Seeds    models.SeedAssignment `json:"seeding" yaml:"seeding"`
	Pairings models.Pairings       `json:"pairings" yaml:"pairings"`
}

type GenerateKnockoutInput struct {
	TournamentID int                 `json:"-"`
	Qualifiers   int                 `json:"qualifiers"`
	Format       models.ResultFormat `json:"format"`
	DrawSeed     *int64              `json:"draw_seed,omitempty"`
	Pod          *string             `json:"pod,omitempty"`
}

type BracketService interface {
	PreviewStructure(qualifiers int) (models.BracketPlan, error)
	PreviewSeeding(standings []*models.GroupStanding, qualifiers int, drawSeed *int64) (models.SeedAssignment, error)
	PreviewPairings(standings []*models.GroupStanding, qualifiers int, drawSeed *int64) (*PairingsPreview, error)
	ReplaceStandings(ctx context.Context, tournamentID int, standings []*models.GroupStanding) error
	GenerateKnockout(ctx context.Context, input GenerateKnockoutInput) ([]*models.Match, error)
}

type bracketService struct {
	matchRepo       repositories.MatchRepository
	standingRepo    repositories.GroupStandingRepository
	generator       brackets.BracketGenerator
	defaultDrawSeed int64
	logger          *slog.Logger
	now             func() time.Time
}

func NewBracketService(
	matchRepo repositories.MatchRepository,
	standingRepo repositories.GroupStandingRepository,
	generator brackets.BracketGenerator,
	defaultDrawSeed int64,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = brackets.NewSingleEliminationGenerator(logger)
	}
	return &bracketService{
		matchRepo:       matchRepo,
		standingRepo:    standingRepo,
		generator:       generator,
		defaultDrawSeed: defaultDrawSeed,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *bracketService) drawSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return s.defaultDrawSeed
}

func (s *bracketService) PreviewStructure(qualifiers int) (models.BracketPlan, error) {
	plan, err := brackets.CalculateStructure(qualifiers)
	if err != nil {
		return models.BracketPlan{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return plan, nil
}

func (s *bracketService) PreviewSeeding(standings []*models.GroupStanding, qualifiers int, drawSeed *int64) (models.SeedAssignment, error) {
	seeds, err := brackets.CalculateSeeds(standings, qualifiers, s.drawSeed(drawSeed))
	if err != nil {
		return models.SeedAssignment{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return seeds, nil
}

func (s *bracketService) PreviewPairings(standings []*models.GroupStanding, qualifiers int, drawSeed *int64) (*PairingsPreview, error) {
	plan, err := s.PreviewStructure(qualifiers)
	if err != nil {
		return nil, err
	}
	seeds, err := s.PreviewSeeding(standings, qualifiers, drawSeed)
	if err != nil {
		return nil, err
	}
	pairings, err := brackets.Pair(seeds, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return &PairingsPreview{Plan: plan, Seeds: seeds, Pairings: pairings}, nil
}

func (s *bracketService) ReplaceStandings(ctx context.Context, tournamentID int, standings []*models.GroupStanding) error {
	for _, st := range standings {
		if st == nil || st.GroupID == "" || st.ParticipantID == "" {
			return fmt.Errorf("%w: every standing needs a group and a participant", ErrValidationFailed)
		}
	}
	if err := s.standingRepo.ReplaceForTournament(ctx, tournamentID, standings); err != nil {
		if errors.Is(err, repositories.ErrStandingParticipantInvalid) {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return fmt.Errorf("failed to store standings of tournament %d: %w", tournamentID, err)
	}
	s.logger.InfoContext(ctx, "group standings replaced", slog.Int("tournament_id", tournamentID), slog.Int("count", len(standings)))
	return nil
}

// GenerateKnockout seeds the stored group standings and stores the complete
// knockout tree of the tournament. It refuses to run twice.
func (s *bracketService) GenerateKnockout(ctx context.Context, input GenerateKnockoutInput) ([]*models.Match, error) {
	if input.Format == "" {
		return nil, fmt.Errorf("%w: result format is required", ErrValidationFailed)
	}

	existing, err := s.matchRepo.ListByTournament(ctx, nil, input.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", input.TournamentID, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: tournament %d has %d matches", ErrKnockoutExists, input.TournamentID, len(existing))
	}

	standings, err := s.standingRepo.ListByTournament(ctx, nil, input.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings of tournament %d: %w", input.TournamentID, err)
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrStandingsMissing, input.TournamentID)
	}

	preview, err := s.PreviewPairings(standings, input.Qualifiers, input.DrawSeed)
	if err != nil {
		return nil, err
	}

	matches, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: input.TournamentID,
		Pairings:     preview.Pairings,
		Format:       input.Format,
		Now:          s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", input.TournamentID, err)
	}
	if input.Pod != nil {
		for _, m := range matches {
			pod := *input.Pod
			m.Pod = &pod
		}
	}

	if err := s.matchRepo.CreateBatch(ctx, nil, matches); err != nil {
		if errors.Is(err, repositories.ErrMatchConflict) {
			return nil, fmt.Errorf("%w: %w", ErrKnockoutExists, err)
		}
		return nil, fmt.Errorf("failed to save bracket of tournament %d: %w", input.TournamentID, err)
	}

	s.logger.InfoContext(ctx, "knockout bracket stored",
		slog.Int("tournament_id", input.TournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("matches", len(matches)))
	return matches, nil
}
