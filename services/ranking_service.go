package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/repositories"
	"github.com/Dosada05/tournament-progression/scoring"
)

type RankingService interface {
	GetScoringConfig(ctx context.Context, tournamentID int) (*models.TournamentScoringConfig, error)
	UpdateScoringConfig(ctx context.Context, cfg *models.TournamentScoringConfig) error
	LedgerEntries(ctx context.Context, tournamentID int) ([]*models.LedgerEntry, error)
	LedgerTotals(ctx context.Context, tournamentID int) ([]*models.LedgerTotal, error)
}

type rankingService struct {
	scoringRepo repositories.ScoringConfigRepository
	ledgerRepo  repositories.LedgerRepository
}

func NewRankingService(scoringRepo repositories.ScoringConfigRepository, ledgerRepo repositories.LedgerRepository) RankingService {
	return &rankingService{scoringRepo: scoringRepo, ledgerRepo: ledgerRepo}
}

// GetScoringConfig falls back to the default table when the tournament has no
// configuration of its own.
func (s *rankingService) GetScoringConfig(ctx context.Context, tournamentID int) (*models.TournamentScoringConfig, error) {
	cfg, err := s.scoringRepo.GetByTournament(ctx, nil, tournamentID)
	if errors.Is(err, repositories.ErrScoringConfigNotFound) {
		return models.DefaultScoringConfig(tournamentID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring config of tournament %d: %w", tournamentID, err)
	}
	return cfg, nil
}

func (s *rankingService) UpdateScoringConfig(ctx context.Context, cfg *models.TournamentScoringConfig) error {
	if len(cfg.BasePoints) == 0 {
		return fmt.Errorf("%w: base points are required", ErrValidationFailed)
	}
	if cfg.Mode == "" {
		cfg.Mode = models.RankingModeFlat
	}
	switch cfg.Mode {
	case models.RankingModeFlat, models.RankingModeTiered, models.RankingModePerformancePod:
	default:
		return fmt.Errorf("%w: unknown ranking mode %q", ErrValidationFailed, cfg.Mode)
	}
	if err := scoring.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if err := s.scoringRepo.Upsert(ctx, nil, cfg); err != nil {
		return fmt.Errorf("failed to save scoring config of tournament %d: %w", cfg.TournamentID, err)
	}
	return nil
}

func (s *rankingService) LedgerEntries(ctx context.Context, tournamentID int) ([]*models.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger of tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

func (s *rankingService) LedgerTotals(ctx context.Context, tournamentID int) ([]*models.LedgerTotal, error) {
	totals, err := s.ledgerRepo.Totals(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger of tournament %d: %w", tournamentID, err)
	}
	return totals, nil
}
