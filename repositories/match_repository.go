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
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyRecorded = errors.New("match result already recorded")
	ErrMatchConflict        = errors.New("match id already exists")
	ErrAssignmentMismatch   = errors.New("slot assignment does not fit the match")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	// RecordResult writes the result fields and the ledger entries in one
	// transaction, only if the match has no result yet.
	RecordResult(ctx context.Context, rec *models.ResultRecord) error
	// MaterializeRound fills the slots of every not yet materialized match
	// of the round and returns the IDs it actually changed.
	MaterializeRound(ctx context.Context, round models.RoundMaterialization, at time.Time) ([]string, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, phase, round, order_in_round, format, pod, slots,
		raw_result, ranking, points_awarded, result_digest, recorded_at, materialized_at, created_at`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	insert := func(executor SQLExecutor) error {
		query := `
			INSERT INTO knockout_matches
			    (id, tournament_id, phase, round, order_in_round, format, pod, slots, materialized_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		for _, m := range matches {
			slots, err := jsonValue(m.Slots)
			if err != nil {
				return fmt.Errorf("encoding slots of %s: %w", m.ID, err)
			}
			if m.CreatedAt.IsZero() {
				m.CreatedAt = time.Now()
			}
			_, err = executor.ExecContext(ctx, query,
				m.ID, m.TournamentID, m.Phase, m.Round, m.OrderInRound, m.Format, m.Pod, slots,
				m.MaterializedAt, m.CreatedAt,
			)
			if err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "knockout_matches_pkey" {
					return fmt.Errorf("%w: %s", ErrMatchConflict, m.ID)
				}
				return fmt.Errorf("CreateBatch failed for match %s: %w", m.ID, err)
			}
		}
		return nil
	}

	if exec != nil {
		return insert(exec)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error { return insert(tx) })
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m                           models.Match
		pod, digest                 sql.NullString
		slots, raw, ranking, points []byte
		recordedAt, materializedAt  sql.NullTime
	)
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Phase, &m.Round, &m.OrderInRound, &m.Format, &pod, &slots,
		&raw, &ranking, &points, &digest, &recordedAt, &materializedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if pod.Valid {
		m.Pod = &pod.String
	}
	if digest.Valid {
		m.ResultDigest = &digest.String
	}
	if recordedAt.Valid {
		m.RecordedAt = &recordedAt.Time
	}
	if materializedAt.Valid {
		m.MaterializedAt = &materializedAt.Time
	}
	if len(raw) > 0 {
		m.RawResult = append([]byte(nil), raw...)
	}
	if err := scanJSON(slots, &m.Slots); err != nil {
		return nil, fmt.Errorf("decoding slots of %s: %w", m.ID, err)
	}
	if err := scanJSON(ranking, &m.Ranking); err != nil {
		return nil, fmt.Errorf("decoding ranking of %s: %w", m.ID, err)
	}
	if err := scanJSON(points, &m.PointsAwarded); err != nil {
		return nil, fmt.Errorf("decoding points of %s: %w", m.ID, err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM knockout_matches WHERE id = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, id)
	return r.scanMatch(row)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM knockout_matches
		WHERE tournament_id = $1
		ORDER BY round ASC, order_in_round ASC, id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) RecordResult(ctx context.Context, rec *models.ResultRecord) error {
	ranking, err := jsonValue(rec.Ranking)
	if err != nil {
		return fmt.Errorf("encoding ranking: %w", err)
	}
	points, err := jsonValue(rec.PointsAwarded)
	if err != nil {
		return fmt.Errorf("encoding points: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE knockout_matches
			SET raw_result = $1, ranking = $2, points_awarded = $3, result_digest = $4, recorded_at = $5
			WHERE id = $6 AND recorded_at IS NULL`
		result, err := tx.ExecContext(ctx, query,
			[]byte(rec.RawResult), ranking, points, rec.Digest, rec.RecordedAt, rec.MatchID,
		)
		if err != nil {
			return fmt.Errorf("recording result of %s: %w", rec.MatchID, err)
		}
		if err := checkAffectedRows(result, ErrMatchAlreadyRecorded); err != nil {
			var exists bool
			if errExists := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM knockout_matches WHERE id = $1)`, rec.MatchID,
			).Scan(&exists); errExists != nil {
				return errExists
			}
			if !exists {
				return ErrMatchNotFound
			}
			return err
		}

		if err := insertLedgerEntries(ctx, tx, rec.LedgerEntries); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: ledger already holds entries for %s", ErrMatchAlreadyRecorded, rec.MatchID)
			}
			return err
		}
		return nil
	})
}

func (r *postgresMatchRepository) MaterializeRound(ctx context.Context, round models.RoundMaterialization, at time.Time) ([]string, error) {
	var applied []string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Сериализуем материализацию одного раунда одного турнира.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, round.TournamentID, round.Round); err != nil {
			return fmt.Errorf("acquiring round lock: %w", err)
		}

		applied = applied[:0]
		for _, a := range round.Assignments {
			m, err := r.scanMatch(tx.QueryRowContext(ctx,
				`SELECT `+matchColumns+` FROM knockout_matches
				WHERE id = $1 AND tournament_id = $2 AND round = $3
				FOR UPDATE`,
				a.MatchID, round.TournamentID, round.Round,
			))
			if err != nil {
				return fmt.Errorf("loading %s: %w", a.MatchID, err)
			}
			if m.MaterializedAt != nil {
				continue
			}
			if err := applyAssignment(m, a); err != nil {
				return err
			}

			slots, err := jsonValue(m.Slots)
			if err != nil {
				return fmt.Errorf("encoding slots of %s: %w", m.ID, err)
			}
			result, err := tx.ExecContext(ctx,
				`UPDATE knockout_matches SET slots = $1, materialized_at = $2
				WHERE id = $3 AND materialized_at IS NULL`,
				slots, at, m.ID,
			)
			if err != nil {
				return fmt.Errorf("materializing %s: %w", m.ID, err)
			}
			if checkAffectedRows(result, ErrMatchNotFound) == nil {
				applied = append(applied, m.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// applyAssignment writes resolved participants into m's slots.
func applyAssignment(m *models.Match, a models.SlotAssignment) error {
	if len(a.Slots) != len(m.Slots) {
		return fmt.Errorf("%w: %s has %d slots, assignment has %d", ErrAssignmentMismatch, m.ID, len(m.Slots), len(a.Slots))
	}
	for i, ids := range a.Slots {
		if ids == nil {
			continue
		}
		m.Slots[i].ParticipantIDs = append([]string(nil), ids...)
	}
	if !m.IsResolved() {
		return fmt.Errorf("%w: %s still has empty slots", ErrAssignmentMismatch, m.ID)
	}
	return nil
}
