package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tournament-progression/models"
)

// LedgerRepository reads the append-only ranking ledger. Entries are only
// ever written together with a match result, see MatchRepository.RecordResult.
type LedgerRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LedgerEntry, error)
	Totals(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LedgerTotal, error)
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

func (r *postgresLedgerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func insertLedgerEntries(ctx context.Context, exec SQLExecutor, entries []*models.LedgerEntry) error {
	query := `
		INSERT INTO ranking_ledger (id, tournament_id, participant_id, match_id, rank, points, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range entries {
		_, err := exec.ExecContext(ctx, query,
			e.ID, e.TournamentID, e.ParticipantID, e.MatchID, e.Rank, e.Points, e.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("appending ledger entry for %s in %s: %w", e.ParticipantID, e.MatchID, err)
		}
	}
	return nil
}

func (r *postgresLedgerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, tournament_id, participant_id, match_id, rank, points, recorded_at
		FROM ranking_ledger
		WHERE tournament_id = $1
		ORDER BY recorded_at ASC, match_id ASC, rank ASC, participant_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.ParticipantID, &e.MatchID, &e.Rank, &e.Points, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *postgresLedgerRepository) Totals(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LedgerTotal, error) {
	query := `
		SELECT participant_id, SUM(points) AS points, COUNT(*) AS matches
		FROM ranking_ledger
		WHERE tournament_id = $1
		GROUP BY participant_id
		ORDER BY points DESC, participant_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]*models.LedgerTotal, 0)
	for rows.Next() {
		var t models.LedgerTotal
		if err := rows.Scan(&t.ParticipantID, &t.Points, &t.Matches); err != nil {
			return nil, err
		}
		totals = append(totals, &t)
	}
	return totals, rows.Err()
}
