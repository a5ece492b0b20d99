package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/lib/pq"
)

var (
	ErrRosterNotFound     = errors.New("match roster not found")
	ErrRosterMatchInvalid = errors.New("roster references an unknown match")
)

type RosterRepository interface {
	GetByMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.MatchRoster, error)
	Upsert(ctx context.Context, exec SQLExecutor, roster *models.MatchRoster) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) GetByMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.MatchRoster, error) {
	var (
		roster      models.MatchRoster
		confirmedBy sql.NullInt64
	)
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT match_id, participant_ids, confirmed_by, confirmed_at FROM match_rosters WHERE match_id = $1`, matchID,
	).Scan(&roster.MatchID, pq.Array(&roster.ParticipantIDs), &confirmedBy, &roster.ConfirmedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterNotFound
		}
		return nil, err
	}
	if confirmedBy.Valid {
		id := int(confirmedBy.Int64)
		roster.ConfirmedBy = &id
	}
	return &roster, nil
}

func (r *postgresRosterRepository) Upsert(ctx context.Context, exec SQLExecutor, roster *models.MatchRoster) error {
	if roster.ConfirmedAt.IsZero() {
		roster.ConfirmedAt = time.Now()
	}
	query := `
		INSERT INTO match_rosters (match_id, participant_ids, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id) DO UPDATE
		SET participant_ids = EXCLUDED.participant_ids,
		    confirmed_by = EXCLUDED.confirmed_by,
		    confirmed_at = EXCLUDED.confirmed_at`
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		roster.MatchID, pq.Array(roster.ParticipantIDs), roster.ConfirmedBy, roster.ConfirmedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", ErrRosterMatchInvalid, roster.MatchID)
		}
		return err
	}
	return nil
}
