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
	ErrStandingParticipantInvalid = errors.New("standing participant conflict or invalid")
)

// GroupStandingRepository stores the group tables handed over by the group
// stage. They are replaced as a whole, never edited line by line.
type GroupStandingRepository interface {
	ReplaceForTournament(ctx context.Context, tournamentID int, standings []*models.GroupStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.GroupStanding, error)
}

type postgresGroupStandingRepository struct {
	db *sql.DB
}

func NewPostgresGroupStandingRepository(db *sql.DB) GroupStandingRepository {
	return &postgresGroupStandingRepository{db: db}
}

func (r *postgresGroupStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupStandingRepository) ReplaceForTournament(ctx context.Context, tournamentID int, standings []*models.GroupStanding) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_standings WHERE tournament_id = $1`, tournamentID); err != nil {
			return fmt.Errorf("clearing standings of tournament %d: %w", tournamentID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO group_standings
			    (tournament_id, group_id, participant_id, points, wins, draws, losses,
			     score_for, score_against, goal_difference, head_to_head, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`)
		if err != nil {
			return fmt.Errorf("ReplaceForTournament failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, s := range standings {
			s.TournamentID = tournamentID
			if s.UpdatedAt.IsZero() {
				s.UpdatedAt = time.Now()
			}
			h2h, err := jsonValue(s.HeadToHead)
			if err != nil {
				return fmt.Errorf("encoding head-to-head of %s: %w", s.ParticipantID, err)
			}
			err = stmt.QueryRowContext(ctx,
				s.TournamentID, s.GroupID, s.ParticipantID, s.Points, s.Wins, s.Draws, s.Losses,
				s.ScoreFor, s.ScoreAgainst, s.GoalDifference, h2h, s.UpdatedAt,
			).Scan(&s.ID)
			if err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
					return fmt.Errorf("%w: %s", ErrStandingParticipantInvalid, s.ParticipantID)
				}
				return fmt.Errorf("ReplaceForTournament failed for participant %s: %w", s.ParticipantID, err)
			}
		}
		return nil
	})
}

func (r *postgresGroupStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.GroupStanding, error) {
	query := `
		SELECT id, tournament_id, group_id, participant_id, points, wins, draws, losses,
		       score_for, score_against, goal_difference, head_to_head, updated_at
		FROM group_standings
		WHERE tournament_id = $1
		ORDER BY group_id ASC, points DESC, participant_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.GroupStanding, 0)
	for rows.Next() {
		var (
			s   models.GroupStanding
			h2h []byte
		)
		err := rows.Scan(
			&s.ID, &s.TournamentID, &s.GroupID, &s.ParticipantID, &s.Points, &s.Wins, &s.Draws, &s.Losses,
			&s.ScoreFor, &s.ScoreAgainst, &s.GoalDifference, &h2h, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := scanJSON(h2h, &s.HeadToHead); err != nil {
			return nil, fmt.Errorf("decoding head-to-head of %s: %w", s.ParticipantID, err)
		}
		standings = append(standings, &s)
	}
	return standings, rows.Err()
}
