package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
)

var ErrScoringConfigNotFound = errors.New("scoring configuration not found")

type ScoringConfigRepository interface {
	GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.TournamentScoringConfig, error)
	Upsert(ctx context.Context, exec SQLExecutor, cfg *models.TournamentScoringConfig) error
}

type postgresScoringConfigRepository struct {
	db *sql.DB
}

func NewPostgresScoringConfigRepository(db *sql.DB) ScoringConfigRepository {
	return &postgresScoringConfigRepository{db: db}
}

func (r *postgresScoringConfigRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoringConfigRepository) GetByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.TournamentScoringConfig, error) {
	var raw []byte
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT config FROM scoring_configs WHERE tournament_id = $1`, tournamentID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoringConfigNotFound
		}
		return nil, err
	}

	var cfg models.TournamentScoringConfig
	if err := scanJSON(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding scoring config of tournament %d: %w", tournamentID, err)
	}
	cfg.TournamentID = tournamentID
	return &cfg, nil
}

func (r *postgresScoringConfigRepository) Upsert(ctx context.Context, exec SQLExecutor, cfg *models.TournamentScoringConfig) error {
	raw, err := jsonValue(cfg)
	if err != nil {
		return fmt.Errorf("encoding scoring config: %w", err)
	}
	query := `
		INSERT INTO scoring_configs (tournament_id, config, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tournament_id) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()`
	_, err = r.getExecutor(exec).ExecContext(ctx, query, cfg.TournamentID, raw)
	return err
}
